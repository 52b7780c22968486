package services

import (
	"errors"
	"fmt"

	"survivor-picks-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EligibilityService tracks which teams an entry may still pick. When a
// competition plays with no_team_twice disabled, the full active team
// list is always eligible and nothing is ever marked used.
type EligibilityService struct {
	DB *gorm.DB
}

func NewEligibilityService(db *gorm.DB) *EligibilityService {
	return &EligibilityService{DB: db}
}

// EligibleTeamsResult is the answer to "what can this entry still pick".
// ResetOccurred is true when this very call repopulated an exhausted set.
type EligibleTeamsResult struct {
	Teams         []models.Team `json:"teams"`
	ResetOccurred bool          `json:"reset_occurred"`
	ResetMessage  string        `json:"reset_message,omitempty"`
}

// GetEligibleTeamsForUser resolves the user's entry in the competition
// and returns its eligible teams.
func (s *EligibilityService) GetEligibleTeamsForUser(userID, competitionID string) (*EligibleTeamsResult, error) {
	var entry models.Entry
	err := s.DB.First(&entry, "user_id = ? AND competition_id = ? AND is_removed = ?",
		userID, competitionID, false).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.GetEligibleTeams(entry.ID)
}

// GetEligibleTeams returns the entry's currently eligible teams. If the
// set is empty and the competition resets on exhaustion, the auto-reset
// runs before returning, so callers never see an empty set merely
// because the entry has used everyone once.
func (s *EligibilityService) GetEligibleTeams(entryID string) (*EligibleTeamsResult, error) {
	var entry models.Entry
	if err := s.DB.Preload("Competition").First(&entry, "id = ?", entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	comp := entry.Competition

	if !comp.NoTeamTwice {
		teams, err := s.activeTeams(s.DB, comp.ID)
		if err != nil {
			return nil, err
		}
		return &EligibleTeamsResult{Teams: teams}, nil
	}

	teams, err := s.eligibleTeams(s.DB, &entry)
	if err != nil {
		return nil, err
	}
	if len(teams) > 0 || !comp.ResetOnExhaustion {
		return &EligibleTeamsResult{Teams: teams}, nil
	}
	return s.MaybeReset(&entry)
}

// MaybeReset repopulates an exhausted eligible set to the full active
// team list, at most once per exhaustion. The entry row lock serializes
// concurrent callers; the re-count inside the transaction is the double
// check — a concurrent pick, restore or earlier reset makes this call a
// no-op that simply returns the current set.
func (s *EligibilityService) MaybeReset(entry *models.Entry) (*EligibleTeamsResult, error) {
	result := &EligibleTeamsResult{}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var locked models.Entry
		if err := forUpdate(tx).First(&locked, "id = ?", entry.ID).Error; err != nil {
			return err
		}

		teams, err := s.eligibleTeams(tx, entry)
		if err != nil {
			return err
		}
		if len(teams) > 0 {
			// Lost the double check — someone else restored or reset first.
			result.Teams = teams
			return nil
		}

		if err := tx.Where("entry_id = ?", entry.ID).Delete(&models.UsedTeam{}).Error; err != nil {
			return err
		}
		teams, err = s.activeTeams(tx, entry.CompetitionID)
		if err != nil {
			return err
		}
		result.Teams = teams
		result.ResetOccurred = true
		result.ResetMessage = fmt.Sprintf(
			"You have used every team once — all %d teams are available to you again.", len(teams))

		// The reset event is the reset marker, so it commits atomically
		// with the marker delete.
		entryID := entry.ID
		return tx.Create(&models.AuditEvent{
			ID:            uuid.NewString(),
			CompetitionID: entry.CompetitionID,
			EntryID:       &entryID,
			Type:          models.AuditEligibilityReset,
			Message:       result.ResetMessage,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Consume marks a team used by the given round's pick. Must run inside
// the same transaction as the pick write. Re-consuming for the same
// round is a no-op (idempotent resubmission); a marker held by a
// different round is TEAM_ALREADY_USED.
func (s *EligibilityService) Consume(tx *gorm.DB, entry *models.Entry, round *models.Round, teamID string) error {
	var team models.Team
	err := tx.First(&team, "id = ? AND competition_id = ?", teamID, entry.CompetitionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrTeamNotInList
	}
	if err != nil {
		return err
	}
	if !team.IsActive {
		return ErrTeamInactive
	}

	var used models.UsedTeam
	err = tx.First(&used, "entry_id = ? AND team_id = ?", entry.ID, teamID).Error
	switch {
	case err == nil:
		if used.RoundID == round.ID {
			return nil
		}
		return ErrTeamAlreadyUsed
	case errors.Is(err, gorm.ErrRecordNotFound):
		// not used yet, fall through
	default:
		return err
	}

	return tx.Create(&models.UsedTeam{
		ID:            uuid.NewString(),
		CompetitionID: entry.CompetitionID,
		EntryID:       entry.ID,
		TeamID:        teamID,
		RoundID:       round.ID,
	}).Error
}

// Restore returns a team to the eligible set after its pick is withdrawn
// or replaced before lock. Must run inside the caller's transaction.
func (s *EligibilityService) Restore(tx *gorm.DB, entryID, teamID string) error {
	return tx.Where("entry_id = ? AND team_id = ?", entryID, teamID).Delete(&models.UsedTeam{}).Error
}

// EligibleCount counts the entry's eligible teams without triggering a
// reset. Used for the withdraw-warning message.
func (s *EligibilityService) EligibleCount(tx *gorm.DB, entry *models.Entry) (int64, error) {
	used := tx.Model(&models.UsedTeam{}).Select("team_id").Where("entry_id = ?", entry.ID)
	var count int64
	err := tx.Model(&models.Team{}).
		Where("competition_id = ? AND is_active = ?", entry.CompetitionID, true).
		Where("id NOT IN (?)", used).
		Count(&count).Error
	return count, err
}

func (s *EligibilityService) activeTeams(tx *gorm.DB, competitionID string) ([]models.Team, error) {
	var teams []models.Team
	err := tx.Where("competition_id = ? AND is_active = ?", competitionID, true).
		Order("name ASC").
		Find(&teams).Error
	return teams, err
}

func (s *EligibilityService) eligibleTeams(tx *gorm.DB, entry *models.Entry) ([]models.Team, error) {
	used := tx.Model(&models.UsedTeam{}).Select("team_id").Where("entry_id = ?", entry.ID)
	var teams []models.Team
	err := tx.Where("competition_id = ? AND is_active = ?", entry.CompetitionID, true).
		Where("id NOT IN (?)", used).
		Order("name ASC").
		Find(&teams).Error
	return teams, err
}
