package models

import "time"

// Audit event types
const (
	AuditEligibilityReset = "ELIGIBILITY_RESET"
	AuditRoundResolved    = "ROUND_RESOLVED"
	AuditPickWithdrawn    = "PICK_WITHDRAWN"
	AuditEntryEliminated  = "ENTRY_ELIMINATED"
)

// AuditEvent is the append-only history of state changes that players and
// admins may need to see after the fact (resets, resolutions,
// eliminations). Eligibility resets are written inside the resetting
// transaction because they double as the reset marker; all other events
// are fire-and-forget and must never block the primary write.
type AuditEvent struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	CompetitionID string    `json:"competition_id" gorm:"not null;index"`
	EntryID       *string   `json:"entry_id,omitempty" gorm:"index"`
	RoundID       *string   `json:"round_id,omitempty" gorm:"index"`
	Type          string    `json:"type" gorm:"not null;index"`
	Message       string    `json:"message"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}
