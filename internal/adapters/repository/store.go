// Package repository provides session sample persistence and the
// in-memory ranking board.
package repository

import (
	"context"
	"time"

	model "github.com/okian/pelota/internal/domain/model"
	"github.com/okian/pelota/pkg/metrics"
)

// Entry represents a ranking board row.
type Entry struct {
	Rank      int
	PlayerID  string
	BestScore float64
	Tier      string
	Games     int
}

// Board provides read/write access to the ranking state.
type Board interface {
	// Record folds one processed session into the board. The score
	// only replaces the stored best when it improves on it; tier and
	// games always update. Returns true when the best score changed.
	Record(ctx context.Context, playerID string, score float64, tier string, games int) (bool, error)

	// Rank returns the current rank row for a player.
	// Returns ErrNotFound if the player is unknown.
	Rank(ctx context.Context, playerID string) (Entry, error)

	// TopN returns the top-N entries ordered by best score desc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of players tracked on the board.
	Count(ctx context.Context) int

	Close() error
}

// SampleStore persists session samples so player histories survive
// restarts and can be exported.
type SampleStore interface {
	// AppendSample persists one sample. Re-appending a sample ID that
	// was already stored is a no-op.
	AppendSample(ctx context.Context, sample model.Sample) error

	// RecentSamples returns a player's samples oldest first. n <= 0
	// returns everything.
	RecentSamples(ctx context.Context, playerID string, n int) ([]model.Sample, error)

	// PlayerIDs lists every player with at least one stored sample.
	PlayerIDs(ctx context.Context) ([]string, error)

	// SampleCount returns the total number of stored samples.
	SampleCount(ctx context.Context) (int, error)

	Close() error
}

// OpenStore selects a SampleStore implementation for the configured
// driver: sqlite, postgres, or memory.
func OpenStore(ctx context.Context, driver, dsn string) (SampleStore, error) {
	if driver == "memory" {
		return NewMemStore(), nil
	}
	return NewSQLStore(ctx, driver, dsn)
}

// observeStore reports one store or board operation to the metrics
// layer.
func observeStore(op string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordStoreQuery(op, status)
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
}
