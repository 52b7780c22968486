// services/scheduler.go
package services

import (
	"log"
	"time"

	"survivor-picks-system/models"

	"github.com/go-co-op/gocron/v2"
)

// Rounds whose lock time passed within this window are already treated as
// due by the sweep, absorbing small clock skew between app servers. Pick
// rejection at the lock gate stays strict — skew only ever shortens the
// window, never extends it.
const lockSkewTolerance = 2 * time.Second

// StartRoundScheduler sweeps for locked, unresolved rounds whose fixtures
// all have results and resolves them. This catches rounds whose last
// result arrived through a path that could not resolve inline (e.g. a
// crashed worker), so resolution never depends on a single request
// surviving.
func (s *ResultService) StartRoundScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			now := time.Now().UTC().Add(lockSkewTolerance)
			var rounds []models.Round
			err := s.DB.Where("resolved_at IS NULL AND lock_time <= ?", now).
				Find(&rounds).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			for _, r := range rounds {
				pending, err := s.pendingFixtureCount(r.ID)
				if err != nil {
					log.Printf("[Scheduler] Fixture count for round %s failed: %v", r.ID, err)
					continue
				}
				if pending > 0 {
					continue
				}
				if err := s.ResolveRound(r.ID, false); err != nil {
					log.Printf("[Scheduler] Failed to resolve round %s: %v", r.ID, err)
				} else {
					log.Printf("✅ Auto-resolved round %d (%s)", r.RoundNumber, r.ID)
				}
			}
		}),
	)
}
