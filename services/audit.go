package services

import (
	"log"

	"survivor-picks-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// recordAudit writes an audit event outside the primary transaction.
// Failures are logged and swallowed — the audit sink must never block or
// roll back an engine write. The one exception is the eligibility reset
// event, which doubles as the reset marker and is written by the reset
// transaction itself.
func recordAudit(db *gorm.DB, event models.AuditEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if err := db.Create(&event).Error; err != nil {
		log.Printf("⚠️ [AUDIT] Failed to write %s event (competition=%s): %v",
			event.Type, event.CompetitionID, err)
	}
}
