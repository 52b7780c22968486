// workers/results_feed_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"survivor-picks-system/models"
	"survivor-picks-system/services"
	"survivor-picks-system/utils"

	"gorm.io/gorm"
)

// FeedFixtureResult matches the JSON the external results feed returns
// per decided fixture.
type FeedFixtureResult struct {
	FixtureID string    `json:"fixture_id"`
	Result    string    `json:"result"` // HOME_WIN / AWAY_WIN / DRAW
	DecidedAt time.Time `json:"decided_at"`
}

// GetResultChangesResponse is the top-level structure of the feed response.
type GetResultChangesResponse struct {
	Results []FeedFixtureResult `json:"results"`
}

// ResultsFeedWorker polls the external results feed and pushes decided
// fixtures through the result resolver. It is the "automation submits
// fixture results" collaborator — admins can still submit or correct
// results by hand through the admin routes.
type ResultsFeedWorker struct {
	db           *gorm.DB
	results      *services.ResultService
	interval     time.Duration
	baseURL      string // e.g. "http://localhost:8600"
	endpointPath string // e.g. "/api/v1/results"
	serviceToken string
	httpClient   *http.Client
}

func NewResultsFeedWorker(db *gorm.DB, results *services.ResultService, feedBaseURL, endpointPath, serviceToken string) *ResultsFeedWorker {
	return &ResultsFeedWorker{
		db:           db,
		results:      results,
		interval:     1 * time.Minute,
		baseURL:      feedBaseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient:   utils.HTTPClient,
	}
}

func (w *ResultsFeedWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Results Feed Worker (results feed → fixtures)…")
	go w.run(ctx)
}

func (w *ResultsFeedWorker) run(ctx context.Context) {
	// Initial sync picks up anything decided while we were down.
	if err := w.syncBatch(ctx, w.getLastResultTime()); err != nil {
		log.Printf("⚠️ Initial results sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx, w.getLastResultTime()); err != nil {
				log.Printf("❌ Results sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Results Feed Worker stopped")
			return
		}
	}
}

// getLastResultTime finds the most recent update among fixtures that
// already carry a result, used as the incremental cursor.
func (w *ResultsFeedWorker) getLastResultTime() time.Time {
	var lastTime time.Time
	err := w.db.Raw("SELECT MAX(updated_at) FROM fixtures WHERE result IS NOT NULL").Scan(&lastTime).Error
	if err != nil || lastTime.IsZero() {
		return time.Unix(0, 0)
	}
	return lastTime
}

// syncBatch fetches decided fixtures from the feed and applies each
// result through the resolver. A failure on one fixture never blocks the
// rest of the batch.
func (w *ResultsFeedWorker) syncBatch(ctx context.Context, since time.Time) error {
	sinceStr := since.UTC().Format(time.RFC3339)

	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid results feed URL '%s': %w", w.baseURL, err)
	}
	endpointURL := base.JoinPath(w.endpointPath)
	q := endpointURL.Query()
	q.Set("since", sinceStr)
	endpointURL.RawQuery = q.Encode()
	finalURL := endpointURL.String()

	req, err := http.NewRequestWithContext(ctx, "GET", finalURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request to %s: %w", finalURL, err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request to results feed failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("results feed non-200 response: %d — %s", resp.StatusCode, string(body))
	}

	var response GetResultChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode results feed response: %w", err)
	}

	if len(response.Results) == 0 {
		return nil
	}

	log.Printf("[RESULTS_FEED] 📥 Processing %d decided fixture(s)…", len(response.Results))

	var applied, skipped, failed int
	for _, r := range response.Results {
		if !models.ValidResult(r.Result) {
			skipped++
			log.Printf("[RESULTS_FEED] ⚠️ Skipping fixture %s: unknown result %q", r.FixtureID, r.Result)
			continue
		}
		if err := w.results.ApplyFixtureResult(r.FixtureID, r.Result); err != nil {
			failed++
			log.Printf("[RESULTS_FEED] ⚠️ Failed to apply result for fixture %s: %v", r.FixtureID, err)
		} else {
			applied++
		}
	}

	log.Printf("[RESULTS_FEED] ✅ Batch done: %d applied, %d skipped, %d failed", applied, skipped, failed)
	return nil
}
