package services

import (
	"time"

	"survivor-picks-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EffectiveLockTime is the instant after which a round stops accepting
// picks: the configured lock time, tightened to the earliest fixture
// kickoff when a fixture starts before it. All lock checks use the app
// server's UTC clock; see DESIGN.md for the skew policy.
func EffectiveLockTime(round *models.Round, fixtures []models.Fixture) time.Time {
	lock := round.LockTime
	for _, f := range fixtures {
		if !f.Kickoff.IsZero() && f.Kickoff.Before(lock) {
			lock = f.Kickoff
		}
	}
	return lock
}

// RoundIsOpen reports whether the round accepts picks at now. Pure
// function, evaluated inside every pick-mutating transaction — never
// cached, because the lock boundary is the competition's fairness
// guarantee.
func RoundIsOpen(round *models.Round, fixtures []models.Fixture, now time.Time) bool {
	return now.Before(EffectiveLockTime(round, fixtures))
}

// AssertRoundOpen fails with ROUND_LOCKED if the round no longer accepts
// picks.
func AssertRoundOpen(round *models.Round, fixtures []models.Fixture, now time.Time) error {
	if !RoundIsOpen(round, fixtures, now) {
		return ErrRoundLocked
	}
	return nil
}

// forUpdate adds a SELECT ... FOR UPDATE clause on databases that support
// row locks. SQLite (tests) serializes writers on its own and rejects the
// clause.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
