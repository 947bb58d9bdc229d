package playtest

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// submitSessions drives every planned session through POST /sessions
// with a bounded worker pool, logging progress once a second while the
// pool runs.
func submitSessions(ctx context.Context, config *Config, client *apiClient, plans []PlayerPlan, stats *Stats) error {
	sessions := make([]Session, 0, stats.SessionsGenerated)
	for _, plan := range plans {
		sessions = append(sessions, plan.Sessions...)
	}

	log.Printf("📤 Submitting %d sessions with %d workers...", len(sessions), config.Workers)

	var accepted, duplicate, failed atomic.Int64

	progressCtx, stopProgress := context.WithCancel(ctx)
	defer stopProgress()
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-progressCtx.Done():
				return
			case <-ticker.C:
				a, d, f := accepted.Load(), duplicate.Load(), failed.Load()
				log.Printf("📤 Progress: %d/%d submitted (accepted: %d, duplicate: %d, failed: %d)",
					a+d+f, len(sessions), a, d, f)
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.Workers)
	for _, session := range sessions {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			switch client.submitSession(gctx, session) {
			case submitAccepted:
				accepted.Add(1)
			case submitDuplicate:
				duplicate.Add(1)
			case submitFailed:
				failed.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	stats.SessionsSubmitted = int(accepted.Load() + duplicate.Load() + failed.Load())
	stats.SessionsSuccessful = int(accepted.Load())
	stats.SessionsDuplicate = int(duplicate.Load())
	stats.SessionsFailed = int(failed.Load())

	log.Printf("✅ Submission done: %d accepted, %d duplicate, %d failed",
		stats.SessionsSuccessful, stats.SessionsDuplicate, stats.SessionsFailed)
	return nil
}
