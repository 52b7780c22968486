package services

import (
	"errors"
	"testing"
	"time"

	"survivor-picks-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newPickService(db *gorm.DB) *PickService {
	return NewPickService(db, NewEligibilityService(db))
}

func TestSetPickCreatesPendingPick(t *testing.T) {
	db := setupTestDB(t)
	comp, teams := seedCompetition(t, db, 20, nil)
	entry := seedEntry(t, db, comp, 1)
	round := seedRound(t, db, comp, 1, time.Now().UTC().Add(time.Hour))
	fixture := seedFixture(t, db, round, teams[0], teams[1], round.LockTime.Add(time.Hour))

	svc := newPickService(db)
	pick, err := svc.SetPick(entry.ID, fixture.ID, models.SideHome)
	if err != nil {
		t.Fatalf("SetPick: %v", err)
	}
	if pick.Outcome != models.PickPending {
		t.Errorf("outcome = %s, want PENDING", pick.Outcome)
	}
	if pick.TeamID == nil || *pick.TeamID != teams[0].ID {
		t.Error("pick should reference the home team")
	}

	result, err := svc.Eligibility.GetEligibleTeams(entry.ID)
	if err != nil {
		t.Fatalf("GetEligibleTeams: %v", err)
	}
	if len(result.Teams) != 19 {
		t.Errorf("eligible teams after pick = %d, want 19", len(result.Teams))
	}
}

func TestSetPickIdempotentResubmission(t *testing.T) {
	db := setupTestDB(t)
	comp, teams := seedCompetition(t, db, 4, nil)
	entry := seedEntry(t, db, comp, 1)
	round := seedRound(t, db, comp, 1, time.Now().UTC().Add(time.Hour))
	fixture := seedFixture(t, db, round, teams[0], teams[1], round.LockTime.Add(time.Hour))

	svc := newPickService(db)
	first, err := svc.SetPick(entry.ID, fixture.ID, models.SideHome)
	if err != nil {
		t.Fatalf("first SetPick: %v", err)
	}
	second, err := svc.SetPick(entry.ID, fixture.ID, models.SideHome)
	if err != nil {
		t.Fatalf("resubmitted SetPick: %v", err)
	}
	if first.ID != second.ID {
		t.Error("resubmitting the same team must return the existing pick")
	}

	var livePicks int64
	db.Model(&models.Pick{}).
		Where("entry_id = ? AND round_id = ? AND outcome <> ?", entry.ID, round.ID, models.PickWithdrawn).
		Count(&livePicks)
	if livePicks != 1 {
		t.Errorf("live picks = %d, want 1", livePicks)
	}
}

func TestSetPickReplaceRestoresOldTeam(t *testing.T) {
	db := setupTestDB(t)
	comp, teams := seedCompetition(t, db, 4, nil)
	entry := seedEntry(t, db, comp, 1)
	round := seedRound(t, db, comp, 1, time.Now().UTC().Add(time.Hour))
	fixtureA := seedFixture(t, db, round, teams[0], teams[1], round.LockTime.Add(time.Hour))
	fixtureB := seedFixture(t, db, round, teams[2], teams[3], round.LockTime.Add(time.Hour))

	svc := newPickService(db)
	old, err := svc.SetPick(entry.ID, fixtureA.ID, models.SideHome)
	if err != nil {
		t.Fatalf("first SetPick: %v", err)
	}
	replacement, err := svc.SetPick(entry.ID, fixtureB.ID, models.SideAway)
	if err != nil {
		t.Fatalf("replacing SetPick: %v", err)
	}
	if replacement.ID == old.ID {
		t.Error("replacement must create a new pick row")
	}

	var oldPick models.Pick
	if err := db.First(&oldPick, "id = ?", old.ID).Error; err != nil {
		t.Fatalf("reload old pick: %v", err)
	}
	if oldPick.Outcome != models.PickWithdrawn {
		t.Errorf("old pick outcome = %s, want WITHDRAWN", oldPick.Outcome)
	}

	result, err := svc.Eligibility.GetEligibleTeams(entry.ID)
	if err != nil {
		t.Fatalf("GetEligibleTeams: %v", err)
	}
	eligible := map[string]bool{}
	for _, team := range result.Teams {
		eligible[team.ID] = true
	}
	if !eligible[teams[0].ID] {
		t.Error("replaced team should be eligible again")
	}
	if eligible[teams[3].ID] {
		t.Error("newly picked team should be consumed")
	}

	current, err := svc.GetCurrentPick(entry.ID, round.ID)
	if err != nil {
		t.Fatalf("GetCurrentPick: %v", err)
	}
	if current == nil || current.ID != replacement.ID {
		t.Error("current pick should be the replacement")
	}
}

func TestSetPickAfterLockRejectedWithoutMutation(t *testing.T) {
	db := setupTestDB(t)
	comp, teams := seedCompetition(t, db, 4, nil)
	entry := seedEntry(t, db, comp, 1)
	round := seedRound(t, db, comp, 1, time.Now().UTC().Add(-time.Hour))
	fixture := seedFixture(t, db, round, teams[0], teams[1], time.Now().UTC().Add(time.Hour))

	svc := newPickService(db)
	_, err := svc.SetPick(entry.ID, fixture.ID, models.SideHome)
	if !errors.Is(err, ErrRoundLocked) {
		t.Fatalf("want ErrRoundLocked, got %v", err)
	}

	var picks, used int64
	db.Model(&models.Pick{}).Where("entry_id = ?", entry.ID).Count(&picks)
	db.Model(&models.UsedTeam{}).Where("entry_id = ?", entry.ID).Count(&used)
	if picks != 0 || used != 0 {
		t.Errorf("locked SetPick left state behind: %d picks, %d used markers", picks, used)
	}
}

func TestSetPickEliminatedPlayer(t *testing.T) {
	db := setupTestDB(t)
	comp, teams := seedCompetition(t, db, 4, nil)
	entry := seedEntry(t, db, comp, 1)
	if err := db.Model(&models.Entry{}).Where("id = ?", entry.ID).
		Updates(map[string]interface{}{"status": models.EntryEliminated, "lives_remaining": 0}).Error; err != nil {
		t.Fatalf("eliminate entry: %v", err)
	}
	round := seedRound(t, db, comp, 1, time.Now().UTC().Add(time.Hour))
	fixture := seedFixture(t, db, round, teams[0], teams[1], round.LockTime.Add(time.Hour))

	svc := newPickService(db)
	_, err := svc.SetPick(entry.ID, fixture.ID, models.SideHome)
	if !errors.Is(err, ErrPlayerEliminated) {
		t.Fatalf("want ErrPlayerEliminated, got %v", err)
	}
}

func TestSetPickTeamAlreadyUsedElsewhere(t *testing.T) {
	db := setupTestDB(t)
	comp, teams := seedCompetition(t, db, 4, nil)
	entry := seedEntry(t, db, comp, 1)
	round := seedRound(t, db, comp, 2, time.Now().UTC().Add(time.Hour))
	fixture := seedFixture(t, db, round, teams[0], teams[1], round.LockTime.Add(time.Hour))

	// Team 0 was consumed by round 1's pick.
	markUsed(t, db, entry, teams[0], uuid.NewString())

	svc := newPickService(db)
	_, err := svc.SetPick(entry.ID, fixture.ID, models.SideHome)
	if !errors.Is(err, ErrTeamNotEligible) {
		t.Fatalf("want ErrTeamNotEligible, got %v", err)
	}
}

func TestSetPickFixtureFromOtherCompetition(t *testing.T) {
	db := setupTestDB(t)
	comp, _ := seedCompetition(t, db, 2, nil)
	_, otherTeams := seedCompetition(t, db, 2, nil)
	entry := seedEntry(t, db, comp, 1)

	var otherComp models.Competition
	if err := db.First(&otherComp, "id = ?", otherTeams[0].CompetitionID).Error; err != nil {
		t.Fatalf("load other competition: %v", err)
	}
	otherRound := seedRound(t, db, otherComp, 1, time.Now().UTC().Add(time.Hour))
	foreignFixture := seedFixture(t, db, otherRound, otherTeams[0], otherTeams[1], otherRound.LockTime.Add(time.Hour))

	svc := newPickService(db)
	_, err := svc.SetPick(entry.ID, foreignFixture.ID, models.SideHome)
	if !errors.Is(err, ErrFixtureNotInRound) {
		t.Fatalf("want ErrFixtureNotInRound, got %v", err)
	}
}

func TestWithdrawRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	comp, teams := seedCompetition(t, db, 4, nil)
	entry := seedEntry(t, db, comp, 1)
	round := seedRound(t, db, comp, 1, time.Now().UTC().Add(time.Hour))
	fixture := seedFixture(t, db, round, teams[0], teams[1], round.LockTime.Add(time.Hour))

	svc := newPickService(db)
	if _, err := svc.SetPick(entry.ID, fixture.ID, models.SideHome); err != nil {
		t.Fatalf("SetPick: %v", err)
	}
	if _, err := svc.WithdrawPick(entry.ID, round.ID); err != nil {
		t.Fatalf("WithdrawPick: %v", err)
	}

	result, err := svc.Eligibility.GetEligibleTeams(entry.ID)
	if err != nil {
		t.Fatalf("GetEligibleTeams: %v", err)
	}
	found := false
	for _, team := range result.Teams {
		if team.ID == teams[0].ID {
			found = true
		}
	}
	if !found {
		t.Error("withdrawn team should be eligible again")
	}

	current, err := svc.GetCurrentPick(entry.ID, round.ID)
	if err != nil {
		t.Fatalf("GetCurrentPick: %v", err)
	}
	if current != nil {
		t.Errorf("current pick after withdrawal = %+v, want none", current)
	}
}

func TestWithdrawWithoutPick(t *testing.T) {
	db := setupTestDB(t)
	comp, _ := seedCompetition(t, db, 2, nil)
	entry := seedEntry(t, db, comp, 1)
	round := seedRound(t, db, comp, 1, time.Now().UTC().Add(time.Hour))

	svc := newPickService(db)
	_, err := svc.WithdrawPick(entry.ID, round.ID)
	if !errors.Is(err, ErrNoPickToWithdraw) {
		t.Fatalf("want ErrNoPickToWithdraw, got %v", err)
	}
}

func TestWithdrawAfterLock(t *testing.T) {
	db := setupTestDB(t)
	comp, teams := seedCompetition(t, db, 2, nil)
	entry := seedEntry(t, db, comp, 1)
	round := seedRound(t, db, comp, 1, time.Now().UTC().Add(time.Hour))
	fixture := seedFixture(t, db, round, teams[0], teams[1], round.LockTime.Add(time.Hour))

	svc := newPickService(db)
	if _, err := svc.SetPick(entry.ID, fixture.ID, models.SideHome); err != nil {
		t.Fatalf("SetPick: %v", err)
	}
	lockRound(t, db, round)

	_, err := svc.WithdrawPick(entry.ID, round.ID)
	if !errors.Is(err, ErrRoundLocked) {
		t.Fatalf("want ErrRoundLocked, got %v", err)
	}
}

func TestWithdrawWarnsOnLastEligibleTeam(t *testing.T) {
	db := setupTestDB(t)
	comp, teams := seedCompetition(t, db, 3, nil)
	entry := seedEntry(t, db, comp, 1)
	round := seedRound(t, db, comp, 3, time.Now().UTC().Add(time.Hour))
	fixture := seedFixture(t, db, round, teams[2], teams[0], round.LockTime.Add(time.Hour))

	// Two of three teams already consumed by earlier rounds.
	markUsed(t, db, entry, teams[0], uuid.NewString())
	markUsed(t, db, entry, teams[1], uuid.NewString())

	svc := newPickService(db)
	if _, err := svc.SetPick(entry.ID, fixture.ID, models.SideHome); err != nil {
		t.Fatalf("SetPick: %v", err)
	}

	warning, err := svc.WithdrawPick(entry.ID, round.ID)
	if err != nil {
		t.Fatalf("WithdrawPick: %v", err)
	}
	if warning == "" {
		t.Error("withdrawing the only eligible team should return a warning")
	}
}

func TestGetCurrentPickVisibleAfterLock(t *testing.T) {
	db := setupTestDB(t)
	comp, teams := seedCompetition(t, db, 2, nil)
	entry := seedEntry(t, db, comp, 1)
	round := seedRound(t, db, comp, 1, time.Now().UTC().Add(time.Hour))
	fixture := seedFixture(t, db, round, teams[0], teams[1], round.LockTime.Add(time.Hour))

	svc := newPickService(db)
	pick, err := svc.SetPick(entry.ID, fixture.ID, models.SideAway)
	if err != nil {
		t.Fatalf("SetPick: %v", err)
	}
	lockRound(t, db, round)

	current, err := svc.GetCurrentPick(entry.ID, round.ID)
	if err != nil {
		t.Fatalf("GetCurrentPick: %v", err)
	}
	if current == nil || current.ID != pick.ID {
		t.Error("players must be able to view their locked pick")
	}
}

func TestPickThenExhaustionTriggersResetOnNextRead(t *testing.T) {
	db := setupTestDB(t)
	comp, teams := seedCompetition(t, db, 20, nil)
	entry := seedEntry(t, db, comp, 1)
	round := seedRound(t, db, comp, 20, time.Now().UTC().Add(time.Hour))
	fixture := seedFixture(t, db, round, teams[19], teams[0], round.LockTime.Add(time.Hour))

	// 19 of 20 teams already used in earlier rounds.
	for _, team := range teams[:19] {
		markUsed(t, db, entry, team, uuid.NewString())
	}

	svc := newPickService(db)
	if _, err := svc.SetPick(entry.ID, fixture.ID, models.SideHome); err != nil {
		t.Fatalf("SetPick on 20th team: %v", err)
	}

	result, err := svc.Eligibility.GetEligibleTeams(entry.ID)
	if err != nil {
		t.Fatalf("GetEligibleTeams: %v", err)
	}
	if !result.ResetOccurred {
		t.Fatal("exhausting the final team should trigger a reset on the next read")
	}
	if len(result.Teams) != 20 {
		t.Errorf("post-reset eligible teams = %d, want the full 20", len(result.Teams))
	}
}
