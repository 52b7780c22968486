package models

import "time"

// Pick outcomes. PENDING is the only non-terminal state: a pick leaves it
// either through the result resolver (WON/LOST/DRAWN), through withdrawal
// or replacement before lock (WITHDRAWN), or never existed and the
// resolver records the absence (NO_PICK). Terminal rows are immutable —
// a replacement always creates a new row.
const (
	PickPending   = "PENDING"
	PickWon       = "WON"
	PickLost      = "LOST"
	PickDrawn     = "DRAWN"
	PickWithdrawn = "WITHDRAWN"
	PickNoPick    = "NO_PICK"
)

// Fixture sides
const (
	SideHome = "HOME"
	SideAway = "AWAY"
)

// Pick is one entry's choice for one round. The partial unique index is
// the central invariant: at most one non-withdrawn pick per (entry, round).
// Fixture/team/side are null only for NO_PICK rows, which the resolver
// inserts for entries that never picked before lock.
type Pick struct {
	ID        string  `json:"id" gorm:"primaryKey"`
	EntryID   string  `json:"entry_id" gorm:"not null;index;uniqueIndex:uniq_live_pick,where:outcome <> 'WITHDRAWN'"`
	RoundID   string  `json:"round_id" gorm:"not null;index;uniqueIndex:uniq_live_pick"`
	FixtureID *string `json:"fixture_id,omitempty"`
	TeamID    *string `json:"team_id,omitempty"`
	Side      *string `json:"side,omitempty"` // HOME or AWAY
	Outcome   string  `json:"outcome" gorm:"not null;default:'PENDING';index"`

	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	WithdrawnAt *time.Time `json:"withdrawn_at,omitempty"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`

	Fixture *Fixture `json:"fixture,omitempty" gorm:"foreignKey:FixtureID"`
	Team    *Team    `json:"team,omitempty" gorm:"foreignKey:TeamID"`
}

// IsTerminal reports whether the pick can no longer change.
func (p *Pick) IsTerminal() bool {
	return p.Outcome != PickPending
}
