package models

import "time"

// Entry statuses
const (
	EntryActive     = "ACTIVE"
	EntryEliminated = "ELIMINATED"
)

// Entry is a player's participation in one competition. Lives and status
// are mutated exclusively by the result resolver; everything else about
// the player (profile, payment, removal) lives in upstream services.
type Entry struct {
	ID             string `json:"id" gorm:"primaryKey"`
	CompetitionID  string `json:"competition_id" gorm:"not null;index;uniqueIndex:uniq_entry_user"`
	UserID         string `json:"user_id" gorm:"not null;index;uniqueIndex:uniq_entry_user"`
	DisplayName    string `json:"display_name"`
	LivesRemaining int    `json:"lives_remaining" gorm:"default:1"`
	Status         string `json:"status" gorm:"default:'ACTIVE';index"`
	IsRemoved      bool   `json:"is_removed" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Competition Competition `json:"competition,omitempty" gorm:"foreignKey:CompetitionID"`
}
