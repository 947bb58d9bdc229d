package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	model "github.com/okian/pelota/internal/domain/model"
)

// MemStore is an in-memory SampleStore for tests and throwaway runs.
type MemStore struct {
	mu       sync.RWMutex
	byPlayer map[string][]model.Sample
	seen     map[string]struct{}
	count    int
}

// NewMemStore creates an empty in-memory sample store.
func NewMemStore() *MemStore {
	return &MemStore{
		byPlayer: make(map[string][]model.Sample),
		seen:     make(map[string]struct{}),
	}
}

// AppendSample stores one sample, skipping sample IDs seen before.
func (m *MemStore) AppendSample(ctx context.Context, sample model.Sample) error {
	start := time.Now()
	defer func() { observeStore("append_sample", start, nil) }()

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, dup := m.seen[sample.SampleID]; dup {
		return nil
	}
	m.seen[sample.SampleID] = struct{}{}
	m.byPlayer[sample.PlayerID] = append(m.byPlayer[sample.PlayerID], sample)
	m.count++
	return nil
}

// RecentSamples returns a player's samples oldest first; n <= 0
// returns everything.
func (m *MemStore) RecentSamples(ctx context.Context, playerID string, n int) ([]model.Sample, error) {
	start := time.Now()
	defer func() { observeStore("recent_samples", start, nil) }()

	m.mu.RLock()
	defer m.mu.RUnlock()

	stored := m.byPlayer[playerID]
	if n > 0 && len(stored) > n {
		stored = stored[len(stored)-n:]
	}
	if len(stored) == 0 {
		return nil, nil
	}
	out := make([]model.Sample, len(stored))
	copy(out, stored)
	return out, nil
}

// PlayerIDs lists every player with at least one stored sample.
func (m *MemStore) PlayerIDs(ctx context.Context) ([]string, error) {
	start := time.Now()
	defer func() { observeStore("player_ids", start, nil) }()

	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.byPlayer))
	for id := range m.byPlayer {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// SampleCount returns the total number of stored samples.
func (m *MemStore) SampleCount(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.count, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}
