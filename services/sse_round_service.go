package services

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"survivor-picks-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// StreamRoundEventsSSE streams a round's audit events (resolution,
// eliminations) to a connected client as they are written.
func (s *ResultService) StreamRoundEventsSSE(c *fiber.Ctx) error {
	roundID := c.Params("id")

	// SSE headers
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()

		var lastMaxCreatedAt time.Time

		// Initialize cursor at the newest existing event so clients only
		// see what happens after they connect.
		var latest models.AuditEvent
		if err := s.DB.
			Where("round_id = ?", roundID).
			Order("created_at DESC").
			First(&latest).Error; err == nil {
			lastMaxCreatedAt = latest.CreatedAt
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("SSE init error for round %s: %v", roundID, err)
		}

		// Initial keepalive (comment event)
		w.WriteString(":\n\n")
		w.Flush()

		for {
			select {
			case <-ticker.C:
				var events []models.AuditEvent

				err := s.DB.
					Where("round_id = ?", roundID).
					Where("created_at > ?", lastMaxCreatedAt).
					Order("created_at ASC").
					Find(&events).Error
				if err != nil {
					log.Printf("SSE query error for round %s: %v", roundID, err)
					continue
				}

				if len(events) == 0 {
					continue
				}

				lastMaxCreatedAt = events[len(events)-1].CreatedAt

				for _, e := range events {
					payload, _ := json.Marshal(e)
					fmt.Fprintf(w, "event: round\ndata: %s\n\n", payload)
				}

				if err := w.Flush(); err != nil {
					// Client disconnected
					return
				}

			case <-c.Context().Done():
				return
			}
		}
	})

	return nil
}
