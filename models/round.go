package models

import "time"

// Round is one picking window of a competition. OPEN/LOCKED is never
// stored — it is always derived from LockTime (and fixture kickoffs) at
// the moment of the check, so it cannot desync. ResolvedAt is an audit
// stamp written after a full resolution; it is not consulted when
// deciding whether resolution work remains.
type Round struct {
	ID            string     `json:"id" gorm:"primaryKey"`
	CompetitionID string     `json:"competition_id" gorm:"not null;index;uniqueIndex:uniq_comp_round"`
	RoundNumber   int        `json:"round_number" gorm:"not null;uniqueIndex:uniq_comp_round"`
	LockTime      time.Time  `json:"lock_time" gorm:"not null"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Fixtures []Fixture `json:"fixtures,omitempty" gorm:"foreignKey:RoundID"`
}
