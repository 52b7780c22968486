package models

import (
	"time"
)

// Lives modes — how a competition treats a lost round.
const (
	LivesModeKnockout = "KNOCKOUT" // first loss eliminates, lives are not tracked
	LivesModeFixed    = "FIXED"    // LivesPerPlayer lives, eliminated at zero
)

// Competition is a single last-man-standing competition with its own
// team list, rounds and entries. Creation/administration is handled by
// the admin workflow service; this service only reads the configuration.
type Competition struct {
	ID     string `json:"id" gorm:"primaryKey"`
	Name   string `json:"name" gorm:"not null"`
	Season string `json:"season"`
	Status string `json:"status" gorm:"default:'active'"`

	// Rule configuration
	NoTeamTwice       bool   `json:"no_team_twice" gorm:"default:true"`
	ResetOnExhaustion bool   `json:"reset_on_exhaustion" gorm:"default:true"`
	DrawSurvives      bool   `json:"draw_survives" gorm:"default:false"`
	LivesMode         string `json:"lives_mode" gorm:"default:'FIXED'"`
	LivesPerPlayer    int    `json:"lives_per_player" gorm:"default:1"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Teams   []Team  `json:"teams,omitempty" gorm:"foreignKey:CompetitionID"`
	Entries []Entry `json:"entries,omitempty" gorm:"foreignKey:CompetitionID"`
	Rounds  []Round `json:"rounds,omitempty" gorm:"foreignKey:CompetitionID"`
}
