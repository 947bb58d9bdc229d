package playtest

import (
	"context"
	"log"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// retrieveTunings fetches the served tuning update for every player.
// The returned slice is index-aligned with plans; a nil entry means
// the service had nothing for that player.
func retrieveTunings(ctx context.Context, config *Config, client *apiClient, plans []PlayerPlan, stats *Stats) ([]*TuningUpdate, error) {
	log.Printf("🎛  Fetching tuning for %d players with %d workers...", len(plans), config.Workers)

	tunings := make([]*TuningUpdate, len(plans))
	var fetched, missing atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.Workers)
	for i := range plans {
		g.Go(func() error {
			update, err := client.playerTuning(gctx, plans[i].PlayerID)
			if err != nil {
				missing.Add(1)
				if config.Verbose {
					log.Printf("⚠️  No tuning for %s: %v", plans[i].PlayerID, err)
				}
				return nil
			}
			tunings[i] = update
			fetched.Add(1)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stats.TuningsRetrieved = int(fetched.Load())
	log.Printf("✅ Tuning fetch done: %d fetched, %d missing", fetched.Load(), missing.Load())
	return tunings, nil
}

// fetchBoard pulls the top of the ranking board.
func fetchBoard(ctx context.Context, config *Config, client *apiClient, stats *Stats) ([]Entry, error) {
	log.Printf("🥇 Fetching top %d board entries...", config.TopN)

	board, err := client.rankings(ctx, config.TopN)
	if err != nil {
		return nil, err
	}

	stats.BoardEntries = len(board)
	log.Printf("✅ Retrieved %d board entries", len(board))
	return board, nil
}
