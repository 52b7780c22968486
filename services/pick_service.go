package services

import (
	"errors"
	"time"

	"survivor-picks-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PickService is the ledger of picks: one non-withdrawn pick per entry
// per round, with eligibility side effects applied in the same
// transaction as the ledger write.
type PickService struct {
	DB          *gorm.DB
	Eligibility *EligibilityService
}

func NewPickService(db *gorm.DB, eligibility *EligibilityService) *PickService {
	return &PickService{DB: db, Eligibility: eligibility}
}

// SetPickForUser resolves the caller's entry in the fixture's competition
// and submits the pick.
func (s *PickService) SetPickForUser(userID, fixtureID, side string) (*models.Pick, error) {
	var fixture models.Fixture
	err := s.DB.First(&fixture, "id = ?", fixtureID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFixtureNotInRound
	}
	if err != nil {
		return nil, err
	}
	var round models.Round
	if err := s.DB.First(&round, "id = ?", fixture.RoundID).Error; err != nil {
		return nil, err
	}
	entry, err := s.entryForUser(userID, round.CompetitionID)
	if err != nil {
		return nil, err
	}
	return s.SetPick(entry.ID, fixtureID, side)
}

// SetPick records the entry's pick for the fixture's round. Replacing an
// earlier pick restores its team and consumes the new one inside the same
// transaction as the ledger write, so there is never a moment where zero
// or two teams are consumed for the round. Resubmitting the same team is
// a no-op that returns the existing pick.
func (s *PickService) SetPick(entryID, fixtureID, side string) (*models.Pick, error) {
	if side != models.SideHome && side != models.SideAway {
		return nil, ErrInvalidSide
	}

	var committed *models.Pick
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// The entry row lock is the per-player serialization point.
		var entry models.Entry
		err := forUpdate(tx).First(&entry, "id = ?", entryID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEntryNotFound
		}
		if err != nil {
			return err
		}
		if entry.Status == models.EntryEliminated {
			return ErrPlayerEliminated
		}

		var fixture models.Fixture
		err = tx.First(&fixture, "id = ?", fixtureID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFixtureNotInRound
		}
		if err != nil {
			return err
		}

		var round models.Round
		if err := tx.Preload("Fixtures").First(&round, "id = ?", fixture.RoundID).Error; err != nil {
			return err
		}
		if round.CompetitionID != entry.CompetitionID {
			return ErrFixtureNotInRound
		}
		if err := AssertRoundOpen(&round, round.Fixtures, time.Now().UTC()); err != nil {
			return err
		}

		teamID := fixture.HomeTeamID
		if side == models.SideAway {
			teamID = fixture.AwayTeamID
		}

		var comp models.Competition
		if err := tx.First(&comp, "id = ?", entry.CompetitionID).Error; err != nil {
			return err
		}

		var existing models.Pick
		err = tx.First(&existing, "entry_id = ? AND round_id = ? AND outcome <> ?",
			entry.ID, round.ID, models.PickWithdrawn).Error
		hasExisting := err == nil
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if hasExisting {
			if existing.IsTerminal() {
				// Resolved while we raced the lock boundary.
				return ErrRoundLocked
			}
			if existing.TeamID != nil && *existing.TeamID == teamID {
				committed = &existing
				return nil
			}
		}

		if comp.NoTeamTwice {
			if hasExisting && existing.TeamID != nil {
				if err := s.Eligibility.Restore(tx, entry.ID, *existing.TeamID); err != nil {
					return err
				}
			}
			if err := s.Eligibility.Consume(tx, &entry, &round, teamID); err != nil {
				if errors.Is(err, ErrTeamAlreadyUsed) {
					return ErrTeamNotEligible
				}
				return err
			}
		}

		now := time.Now().UTC()
		if hasExisting {
			// The replaced row stays behind, terminally withdrawn.
			if err := tx.Model(&models.Pick{}).Where("id = ?", existing.ID).
				Updates(map[string]interface{}{
					"outcome":      models.PickWithdrawn,
					"withdrawn_at": now,
				}).Error; err != nil {
				return err
			}
		}

		pick := models.Pick{
			ID:        uuid.NewString(),
			EntryID:   entry.ID,
			RoundID:   round.ID,
			FixtureID: &fixture.ID,
			TeamID:    &teamID,
			Side:      &side,
			Outcome:   models.PickPending,
		}
		if err := tx.Create(&pick).Error; err != nil {
			return err
		}
		committed = &pick
		return nil
	})
	if err != nil {
		return nil, err
	}
	return committed, nil
}

// WithdrawPickForUser resolves the caller's entry in the round's
// competition and withdraws their pick.
func (s *PickService) WithdrawPickForUser(userID, roundID string) (string, error) {
	var round models.Round
	err := s.DB.First(&round, "id = ?", roundID).Error
	if err != nil {
		return "", err
	}
	entry, err := s.entryForUser(userID, round.CompetitionID)
	if err != nil {
		return "", err
	}
	return s.WithdrawPick(entry.ID, roundID)
}

// WithdrawPick marks the entry's pending pick WITHDRAWN and restores its
// team. The returned warning is advisory text for the one case worth
// flagging: the withdrawal left the restored team as the entry's only
// eligible team.
func (s *PickService) WithdrawPick(entryID, roundID string) (string, error) {
	var warning string
	var audit *models.AuditEvent
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var entry models.Entry
		err := forUpdate(tx).First(&entry, "id = ?", entryID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEntryNotFound
		}
		if err != nil {
			return err
		}

		var round models.Round
		if err := tx.Preload("Fixtures").First(&round, "id = ?", roundID).Error; err != nil {
			return err
		}
		if err := AssertRoundOpen(&round, round.Fixtures, time.Now().UTC()); err != nil {
			return err
		}

		var pick models.Pick
		err = tx.First(&pick, "entry_id = ? AND round_id = ? AND outcome = ?",
			entry.ID, round.ID, models.PickPending).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoPickToWithdraw
		}
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := tx.Model(&models.Pick{}).Where("id = ?", pick.ID).
			Updates(map[string]interface{}{
				"outcome":      models.PickWithdrawn,
				"withdrawn_at": now,
			}).Error; err != nil {
			return err
		}

		var comp models.Competition
		if err := tx.First(&comp, "id = ?", entry.CompetitionID).Error; err != nil {
			return err
		}
		if comp.NoTeamTwice && pick.TeamID != nil {
			if err := s.Eligibility.Restore(tx, entry.ID, *pick.TeamID); err != nil {
				return err
			}
			count, err := s.Eligibility.EligibleCount(tx, &entry)
			if err != nil {
				return err
			}
			if count == 1 {
				warning = "this was your only remaining eligible team — picking it again will exhaust your team list"
			}
		}

		entryID := entry.ID
		rID := round.ID
		audit = &models.AuditEvent{
			CompetitionID: entry.CompetitionID,
			EntryID:       &entryID,
			RoundID:       &rID,
			Type:          models.AuditPickWithdrawn,
			Message:       "pick withdrawn before lock",
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if audit != nil {
		recordAudit(s.DB, *audit)
	}
	return warning, nil
}

// GetCurrentPickForUser resolves the caller's entry in the round's
// competition and returns their current pick.
func (s *PickService) GetCurrentPickForUser(userID, roundID string) (*models.Pick, error) {
	var round models.Round
	if err := s.DB.First(&round, "id = ?", roundID).Error; err != nil {
		return nil, err
	}
	entry, err := s.entryForUser(userID, round.CompetitionID)
	if err != nil {
		return nil, err
	}
	return s.GetCurrentPick(entry.ID, roundID)
}

// GetCurrentPick returns the entry's non-withdrawn pick for the round, or
// nil if there is none. Read-only and lock-state independent — players
// may always view their locked pick.
func (s *PickService) GetCurrentPick(entryID, roundID string) (*models.Pick, error) {
	var pick models.Pick
	err := s.DB.Preload("Team").Preload("Fixture").
		Where("entry_id = ? AND round_id = ? AND outcome <> ?", entryID, roundID, models.PickWithdrawn).
		Order("created_at DESC").
		First(&pick).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pick, nil
}

func (s *PickService) entryForUser(userID, competitionID string) (*models.Entry, error) {
	var entry models.Entry
	err := s.DB.First(&entry, "user_id = ? AND competition_id = ? AND is_removed = ?",
		userID, competitionID, false).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
