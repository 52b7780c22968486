package models

import "time"

// Fixture results
const (
	ResultHomeWin = "HOME_WIN"
	ResultAwayWin = "AWAY_WIN"
	ResultDraw    = "DRAW"
)

// Fixture is one match within a round. A team appears in at most one
// fixture per round (enforced at creation, upstream), so picks can
// reference teams rather than fixture sides for eligibility.
type Fixture struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	RoundID    string    `json:"round_id" gorm:"not null;index"`
	HomeTeamID string    `json:"home_team_id" gorm:"not null"`
	AwayTeamID string    `json:"away_team_id" gorm:"not null"`
	Kickoff    time.Time `json:"kickoff"`
	Result     *string   `json:"result,omitempty"` // HOME_WIN / AWAY_WIN / DRAW, nil until known

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	HomeTeam Team `json:"home_team,omitempty" gorm:"foreignKey:HomeTeamID"`
	AwayTeam Team `json:"away_team,omitempty" gorm:"foreignKey:AwayTeamID"`
}

// ValidResult reports whether r is one of the three storable outcomes.
func ValidResult(r string) bool {
	return r == ResultHomeWin || r == ResultAwayWin || r == ResultDraw
}
