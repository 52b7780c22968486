package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"survivor-picks-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResultService consumes fixture outcomes and converts the round's
// pending picks into survive/eliminate results.
type ResultService struct {
	DB *gorm.DB
}

func NewResultService(db *gorm.DB) *ResultService {
	return &ResultService{DB: db}
}

// ApplyFixtureResult stores the fixture outcome and resolves the owning
// round once every fixture in the round has a result. Admins may
// re-submit a corrected result; resolution is idempotent so nobody gets
// double-penalized.
func (s *ResultService) ApplyFixtureResult(fixtureID, result string) error {
	if !models.ValidResult(result) {
		return ErrInvalidResult
	}

	var fixture models.Fixture
	err := s.DB.First(&fixture, "id = ?", fixtureID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrFixtureNotInRound
	}
	if err != nil {
		return err
	}

	if err := s.DB.Model(&models.Fixture{}).Where("id = ?", fixtureID).
		Update("result", result).Error; err != nil {
		return err
	}
	log.Printf("📋 [RESULTS] Fixture %s result recorded: %s", fixtureID, result)

	pending, err := s.pendingFixtureCount(fixture.RoundID)
	if err != nil {
		return err
	}
	if pending > 0 {
		return nil
	}
	err = s.ResolveRound(fixture.RoundID, false)
	if errors.Is(err, ErrRoundNotReady) {
		// Round still open; the result is stored and the scheduler sweep
		// will resolve the round once it locks.
		log.Printf("📋 [RESULTS] Round %s not locked yet, deferring resolution", fixture.RoundID)
		return nil
	}
	return err
}

// ResolveRound walks every ACTIVE entry of the round's competition and
// settles their pick: WON survives untouched, LOST costs a life, DRAWN
// costs a life unless the competition plays draw-survives, and no pick at
// all is an automatic loss recorded as a NO_PICK row. Re-running is a
// no-op because settled picks are terminal and the NO_PICK row stands in
// for the absent ones.
//
// force skips the every-fixture-has-a-result requirement; picks on
// fixtures that still have no result are left pending.
func (s *ResultService) ResolveRound(roundID string, force bool) error {
	var round models.Round
	if err := s.DB.Preload("Fixtures").First(&round, "id = ?", roundID).Error; err != nil {
		return err
	}
	now := time.Now().UTC()
	if RoundIsOpen(&round, round.Fixtures, now) {
		// Never settle a round players can still pick in.
		return ErrRoundNotReady
	}

	pending, err := s.pendingFixtureCount(round.ID)
	if err != nil {
		return err
	}
	if pending > 0 && !force {
		return ErrRoundNotReady
	}

	var comp models.Competition
	if err := s.DB.First(&comp, "id = ?", round.CompetitionID).Error; err != nil {
		return err
	}

	teamOutcome := outcomeByTeam(round.Fixtures)

	var entries []models.Entry
	if err := s.DB.Where("competition_id = ? AND status = ? AND is_removed = ?",
		comp.ID, models.EntryActive, false).Find(&entries).Error; err != nil {
		return err
	}

	// Each entry settles in its own transaction: its outcome depends only
	// on its own pick, so order across entries does not matter, and the
	// entry row lock keeps two concurrent resolutions of the same
	// (entry, round) from both deducting a life.
	var firstErr error
	allSettled := true
	for _, entry := range entries {
		settled, eliminated, err := s.resolveEntry(&round, &comp, entry.ID, teamOutcome)
		if err != nil {
			log.Printf("❌ [RESOLVE] Entry %s round %s: %v", entry.ID, round.ID, err)
			if firstErr == nil {
				firstErr = err
			}
			allSettled = false
			continue
		}
		if !settled {
			allSettled = false
		}
		if eliminated {
			entryID := entry.ID
			rID := round.ID
			recordAudit(s.DB, models.AuditEvent{
				CompetitionID: comp.ID,
				EntryID:       &entryID,
				RoundID:       &rID,
				Type:          models.AuditEntryEliminated,
				Message:       fmt.Sprintf("eliminated after round %d", round.RoundNumber),
			})
		}
	}
	if firstErr != nil {
		return firstErr
	}

	if allSettled && pending == 0 && round.ResolvedAt == nil {
		if err := s.DB.Model(&models.Round{}).
			Where("id = ? AND resolved_at IS NULL", round.ID).
			Update("resolved_at", now).Error; err != nil {
			return err
		}
		rID := round.ID
		recordAudit(s.DB, models.AuditEvent{
			CompetitionID: comp.ID,
			RoundID:       &rID,
			Type:          models.AuditRoundResolved,
			Message:       fmt.Sprintf("round %d resolved", round.RoundNumber),
		})
		log.Printf("✅ [RESOLVE] Round %d (%s) fully resolved", round.RoundNumber, round.ID)
	}
	return nil
}

// resolveEntry settles one entry's round inside its own transaction.
// settled is false when the entry's pick sits on a fixture that still has
// no result (forced resolve).
func (s *ResultService) resolveEntry(round *models.Round, comp *models.Competition, entryID string, teamOutcome map[string]string) (settled, eliminated bool, err error) {
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var entry models.Entry
		if err := forUpdate(tx).First(&entry, "id = ?", entryID).Error; err != nil {
			return err
		}
		if entry.Status == models.EntryEliminated {
			// Eliminated between the scan and the lock — nothing to settle.
			settled = true
			return nil
		}

		var pick models.Pick
		err := forUpdate(tx).First(&pick, "entry_id = ? AND round_id = ? AND outcome <> ?",
			entry.ID, round.ID, models.PickWithdrawn).Error
		noPick := errors.Is(err, gorm.ErrRecordNotFound)
		if err != nil && !noPick {
			return err
		}

		now := time.Now().UTC()
		if noPick {
			// Absence is a first-class outcome, not an exception path:
			// record it so history shows why the life went.
			record := models.Pick{
				ID:         uuid.NewString(),
				EntryID:    entry.ID,
				RoundID:    round.ID,
				Outcome:    models.PickNoPick,
				ResolvedAt: &now,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
			eliminated, err = s.applyLifeLoss(tx, &entry, comp)
			if err != nil {
				return err
			}
			settled = true
			return nil
		}

		if pick.IsTerminal() {
			// Already settled by an earlier run.
			settled = true
			return nil
		}

		outcome, known := teamOutcome[*pick.TeamID]
		if !known {
			// Forced resolve with this fixture's result still missing.
			return nil
		}

		if err := tx.Model(&models.Pick{}).Where("id = ?", pick.ID).
			Updates(map[string]interface{}{
				"outcome":     outcome,
				"resolved_at": now,
			}).Error; err != nil {
			return err
		}

		if outcome == models.PickLost || (outcome == models.PickDrawn && !comp.DrawSurvives) {
			eliminated, err = s.applyLifeLoss(tx, &entry, comp)
			if err != nil {
				return err
			}
		}
		settled = true
		return nil
	})
	return settled, eliminated, err
}

// applyLifeLoss deducts one life (or eliminates outright in knockout
// mode) for the already-locked entry row.
func (s *ResultService) applyLifeLoss(tx *gorm.DB, entry *models.Entry, comp *models.Competition) (eliminated bool, err error) {
	updates := map[string]interface{}{}
	if comp.LivesMode == models.LivesModeKnockout {
		updates["status"] = models.EntryEliminated
		eliminated = true
	} else {
		lives := entry.LivesRemaining - 1
		if lives < 0 {
			lives = 0
		}
		updates["lives_remaining"] = lives
		if lives == 0 {
			updates["status"] = models.EntryEliminated
			eliminated = true
		}
	}
	if err := tx.Model(&models.Entry{}).Where("id = ?", entry.ID).Updates(updates).Error; err != nil {
		return false, err
	}
	return eliminated, nil
}

func (s *ResultService) pendingFixtureCount(roundID string) (int64, error) {
	var n int64
	err := s.DB.Model(&models.Fixture{}).
		Where("round_id = ? AND result IS NULL", roundID).
		Count(&n).Error
	return n, err
}

// outcomeByTeam maps each team in the round's decided fixtures to the
// pick outcome its backers would receive.
func outcomeByTeam(fixtures []models.Fixture) map[string]string {
	out := make(map[string]string, len(fixtures)*2)
	for _, f := range fixtures {
		if f.Result == nil {
			continue
		}
		switch *f.Result {
		case models.ResultHomeWin:
			out[f.HomeTeamID] = models.PickWon
			out[f.AwayTeamID] = models.PickLost
		case models.ResultAwayWin:
			out[f.HomeTeamID] = models.PickLost
			out[f.AwayTeamID] = models.PickWon
		case models.ResultDraw:
			out[f.HomeTeamID] = models.PickDrawn
			out[f.AwayTeamID] = models.PickDrawn
		}
	}
	return out
}
