package services

import "fmt"

// CodedError is a business-rule violation with a stable machine-readable
// code. Handlers surface the code verbatim; anything that is not a
// CodedError is an infrastructure failure and stays opaque to callers.
type CodedError struct {
	Code    string
	Message string
}

func (e *CodedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// State-conflict and validation errors returned by the engine.
var (
	ErrRoundLocked       = &CodedError{Code: "ROUND_LOCKED", Message: "the round is locked, picks can no longer change"}
	ErrTeamNotEligible   = &CodedError{Code: "TEAM_NOT_ELIGIBLE", Message: "team has already been used in this competition"}
	ErrPlayerEliminated  = &CodedError{Code: "PLAYER_ELIMINATED", Message: "entry has been eliminated from the competition"}
	ErrFixtureNotInRound = &CodedError{Code: "FIXTURE_NOT_IN_ROUND", Message: "fixture does not belong to this round"}
	ErrNoPickToWithdraw  = &CodedError{Code: "NO_PICK_TO_WITHDRAW", Message: "no active pick to withdraw for this round"}
	ErrTeamAlreadyUsed   = &CodedError{Code: "TEAM_ALREADY_USED", Message: "team is already marked used by another round's pick"}
	ErrTeamNotInList     = &CodedError{Code: "TEAM_NOT_IN_LIST", Message: "team is not in the competition's team list"}
	ErrTeamInactive      = &CodedError{Code: "TEAM_INACTIVE", Message: "team has been deactivated"}
	ErrInvalidSide       = &CodedError{Code: "INVALID_SIDE", Message: "side must be HOME or AWAY"}
	ErrInvalidResult     = &CodedError{Code: "INVALID_RESULT", Message: "result must be HOME_WIN, AWAY_WIN or DRAW"}
	ErrEntryNotFound     = &CodedError{Code: "ENTRY_NOT_FOUND", Message: "no entry for this player in the competition"}
	ErrRoundNotReady     = &CodedError{Code: "ROUND_NOT_READY", Message: "round still has fixtures without a result"}
)
