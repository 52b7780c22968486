package models

import "time"

// UsedTeam marks a team as consumed by an entry's pick. The eligible set
// for an entry is the competition's active team list minus its UsedTeam
// rows. RoundID records which round's pick consumed the team so that
// resubmitting the same pick is a no-op while reusing the team in a
// different round is rejected.
type UsedTeam struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	CompetitionID string    `json:"competition_id" gorm:"not null;index"`
	EntryID       string    `json:"entry_id" gorm:"not null;index;uniqueIndex:uniq_used_team"`
	TeamID        string    `json:"team_id" gorm:"not null;uniqueIndex:uniq_used_team"`
	RoundID       string    `json:"round_id" gorm:"not null"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
}
