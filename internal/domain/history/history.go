// Package history tracks per-player session history: a bounded window of
// recent samples for classification plus lifetime aggregates and movement
// patterns for trend analysis and prediction.
package history

import (
	"sort"
	"sync"

	"github.com/okian/pelota/internal/domain/model"
)

// Retention and prediction constants.
const (
	defaultCapacity  = 100
	patternMoveLimit = 20
	patternKeepLimit = 50
	predictionWindow = 10
	fallbackMove     = "up"
)

// Averages is a lifetime aggregate over every sample ever appended, not
// just the retained window.
type Averages struct {
	Games    int
	Score    float64
	Duration float64
}

// History is an explicit per-player record handed to the classifier by the
// caller; nothing here is process-global. Appends come from one writer at a
// time, reads may be concurrent.
type History struct {
	mu sync.RWMutex

	capacity int
	samples  []model.Sample

	games       int
	scoreSum    float64
	durationSum float64
	bestScore   float64

	patterns   [][]string
	deaths     map[string]int
	directions map[string]int
}

// New creates an empty history with the default retention capacity.
func New(opts ...Option) *History {
	h := &History{
		capacity:   defaultCapacity,
		deaths:     make(map[string]int),
		directions: make(map[string]int),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Append records a finished session. Lifetime aggregates always grow; the
// retained sample window is bounded by the configured capacity.
func (h *History) Append(sample model.Sample) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.games++
	h.scoreSum += sample.Score
	h.durationSum += sample.DurationSeconds
	if sample.Score > h.bestScore {
		h.bestScore = sample.Score
	}

	if len(h.samples) >= h.capacity {
		overflow := len(h.samples) - h.capacity + 1
		h.samples = append(h.samples[:0], h.samples[overflow:]...)
	}
	h.samples = append(h.samples, sample)

	if sample.DeathCause != "" {
		h.deaths[sample.DeathCause]++
	}
	for _, move := range sample.Moves {
		h.directions[move]++
	}

	if len(sample.Moves) > 0 {
		pattern := sample.Moves
		if len(pattern) > patternMoveLimit {
			pattern = pattern[:patternMoveLimit]
		}
		owned := make([]string, len(pattern))
		copy(owned, pattern)
		if len(h.patterns) >= patternKeepLimit {
			h.patterns = append(h.patterns[:0], h.patterns[1:]...)
		}
		h.patterns = append(h.patterns, owned)
	}
}

// Averages returns lifetime aggregates. Zero games yields zero averages.
func (h *History) Averages() Averages {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.games == 0 {
		return Averages{}
	}
	n := float64(h.games)
	return Averages{
		Games:    h.games,
		Score:    h.scoreSum / n,
		Duration: h.durationSum / n,
	}
}

// Games returns the lifetime session count.
func (h *History) Games() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.games
}

// BestScore returns the highest score ever appended.
func (h *History) BestScore() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.bestScore
}

// Recent returns up to n of the newest retained samples, oldest first.
// n <= 0 returns everything retained.
func (h *History) Recent(n int) []model.Sample {
	h.mu.RLock()
	defer h.mu.RUnlock()

	start := 0
	if n > 0 && len(h.samples) > n {
		start = len(h.samples) - n
	}
	out := make([]model.Sample, len(h.samples)-start)
	copy(out, h.samples[start:])
	return out
}

// Snapshot returns all retained samples, oldest first.
func (h *History) Snapshot() []model.Sample {
	return h.Recent(0)
}

// DeathCauses returns a copy of the death cause counts.
func (h *History) DeathCauses() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string]int, len(h.deaths))
	for cause, count := range h.deaths {
		out[cause] = count
	}
	return out
}

// PreferredDirection returns the most used move and its lifetime count.
// Ties break lexicographically so the answer is deterministic.
func (h *History) PreferredDirection() (string, int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return topEntry(h.directions)
}

// PredictNextMove guesses the player's likely next input: the most common
// move across the newest patterns, falling back to "up" with no data.
func (h *History) PredictNextMove() string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	start := 0
	if len(h.patterns) > predictionWindow {
		start = len(h.patterns) - predictionWindow
	}
	counts := make(map[string]int)
	for _, pattern := range h.patterns[start:] {
		for _, move := range pattern {
			counts[move]++
		}
	}

	move, count := topEntry(counts)
	if count == 0 {
		return fallbackMove
	}
	return move
}

func topEntry(counts map[string]int) (string, int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best := ""
	bestCount := 0
	for _, k := range keys {
		if counts[k] > bestCount {
			best = k
			bestCount = counts[k]
		}
	}
	return best, bestCount
}
