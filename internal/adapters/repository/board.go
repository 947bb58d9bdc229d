package repository

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/okian/pelota/pkg/metrics"
)

// The board keeps one standing per player and orders them in a treap
// keyed on (best score, player ID). Higher scores rank earlier and
// equal scores fall back to ascending ID, so an in-order walk yields
// the rankings best to worst. Node priorities are random, which keeps
// the expected depth logarithmic no matter how scores arrive.

// Scores order as fixed-point integers with 12 fractional digits.
// Values outside the representable range clamp to the extremes.
const scoreScale = 1_000_000_000_000

type scoreFP int64

func toFixedPoint(x float64) scoreFP {
	if math.IsNaN(x) {
		return 0
	}
	scaled := x * scoreScale
	if scaled > float64(math.MaxInt64) {
		return scoreFP(math.MaxInt64)
	}
	if scaled < float64(math.MinInt64) {
		return scoreFP(math.MinInt64)
	}
	return scoreFP(math.Round(scaled))
}

// standing stores a player's best alongside their current tier and
// lifetime game count. best keeps the raw float so clamped fixed-point
// ordering never distorts what readers see.
type standing struct {
	score scoreFP
	best  float64
	tier  string
	games int
}

type node struct {
	id          string
	score       scoreFP
	prio        uint64
	left, right *node
}

// ranksAhead reports whether standing a precedes standing b in the
// rankings.
func ranksAhead(aScore scoreFP, aID string, bScore scoreFP, bID string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aID < bID
}

// split partitions t into the nodes ranking ahead of the (score, id)
// pivot and the rest. The pivot itself, when present, lands in rest.
func split(t *node, score scoreFP, id string) (ahead, rest *node) {
	if t == nil {
		return nil, nil
	}
	if ranksAhead(t.score, t.id, score, id) {
		t.right, rest = split(t.right, score, id)
		return t, rest
	}
	ahead, t.left = split(t.left, score, id)
	return ahead, t
}

// merge joins two treaps. Every node of a must rank ahead of every
// node of b.
func merge(a, b *node) *node {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a.prio >= b.prio {
		a.right = merge(a.right, b)
		return a
	}
	b.left = merge(a, b.left)
	return b
}

// remove deletes the exact (score, id) node by merging its subtrees.
func remove(t *node, score scoreFP, id string) *node {
	if t == nil {
		return nil
	}
	if t.score == score && t.id == id {
		return merge(t.left, t.right)
	}
	if ranksAhead(score, id, t.score, t.id) {
		t.left = remove(t.left, score, id)
	} else {
		t.right = remove(t.right, score, id)
	}
	return t
}

// TreapBoard ranks players in memory. Safe for concurrent use.
type TreapBoard struct {
	mu        sync.RWMutex
	root      *node
	standings map[string]standing

	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stop     chan struct{}
	stopOnce sync.Once
}

// NewTreapBoard builds an empty board and starts its gauge refresher.
// Close releases the refresher.
func NewTreapBoard(ctx context.Context, opts ...Option) *TreapBoard {
	b := &TreapBoard{
		metricsUpdateInterval: 5 * time.Second,
		standings:             make(map[string]standing),
		stop:                  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}

	b.wg.Add(1)
	go b.refreshGauges(ctx)

	return b
}

// Record folds a finished game into the standings. It returns true
// when the score beats the player's previous best, which reorders the
// treap in O(log n) expected time.
func (b *TreapBoard) Record(ctx context.Context, playerID string, score float64, tier string, games int) (bool, error) {
	start := time.Now()
	defer func() { observeStore("board_record", start, nil) }()

	fp := toFixedPoint(score)

	b.mu.Lock()
	defer b.mu.Unlock()

	old, known := b.standings[playerID]
	if known && fp <= old.score {
		// Not a new best. Tier and game count still track the
		// player's current state.
		old.tier = tier
		old.games = games
		b.standings[playerID] = old
		return false, nil
	}
	if known {
		b.root = remove(b.root, old.score, playerID)
	}

	b.standings[playerID] = standing{score: fp, best: score, tier: tier, games: games}
	ahead, rest := split(b.root, fp, playerID)
	b.root = merge(merge(ahead, &node{id: playerID, score: fp, prio: rand.Uint64()}), rest)
	return true, nil
}

// Rank returns the player's current row. Equal best scores share a
// rank, so a player's rank is one more than the number of distinct
// scores ahead of theirs.
func (b *TreapBoard) Rank(ctx context.Context, playerID string) (Entry, error) {
	start := time.Now()

	b.mu.RLock()
	defer b.mu.RUnlock()

	st, ok := b.standings[playerID]
	if !ok {
		observeStore("board_rank", start, ErrNotFound)
		return Entry{}, ErrNotFound
	}

	higher := make(map[scoreFP]struct{})
	for _, other := range b.standings {
		if other.score > st.score {
			higher[other.score] = struct{}{}
		}
	}

	observeStore("board_rank", start, nil)
	return Entry{
		Rank:      len(higher) + 1,
		PlayerID:  playerID,
		BestScore: st.best,
		Tier:      st.tier,
		Games:     st.games,
	}, nil
}

// TopN returns the best n rows in rank order.
func (b *TreapBoard) TopN(ctx context.Context, n int) ([]Entry, error) {
	start := time.Now()

	if n < 1 {
		observeStore("board_topn", start, ErrInvalidLimit)
		return nil, ErrInvalidLimit
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Entry, 0, min(n, len(b.standings)))
	b.appendRanked(b.root, n, &out)
	denseRank(out)

	observeStore("board_topn", start, nil)
	return out, nil
}

// appendRanked walks t in rank order, appending a row per player until
// limit rows are collected.
func (b *TreapBoard) appendRanked(t *node, limit int, out *[]Entry) {
	if t == nil || len(*out) >= limit {
		return
	}
	b.appendRanked(t.left, limit, out)
	if len(*out) >= limit {
		return
	}
	st := b.standings[t.id]
	*out = append(*out, Entry{
		PlayerID:  t.id,
		BestScore: st.best,
		Tier:      st.tier,
		Games:     st.games,
	})
	b.appendRanked(t.right, limit, out)
}

// denseRank numbers rows already in rank order. Rows with equal best
// scores share a rank and the next distinct score takes the rank right
// after it.
func denseRank(entries []Entry) {
	rank := 0
	for i := range entries {
		if i == 0 || entries[i].BestScore != entries[i-1].BestScore {
			rank++
		}
		entries[i].Rank = rank
	}
}

// Count returns the number of ranked players.
func (b *TreapBoard) Count(ctx context.Context) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.standings)
}

// Close stops the gauge refresher. Reads keep working afterwards.
func (b *TreapBoard) Close() error {
	b.stopOnce.Do(func() { close(b.stop) })
	b.wg.Wait()
	return nil
}

func (b *TreapBoard) refreshGauges(ctx context.Context) {
	defer b.wg.Done()

	ticker := time.NewTicker(b.metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-b.stop:
			return
		case <-ticker.C:
			count := b.Count(ctx)
			metrics.UpdatePlayersTracked(count)
			metrics.UpdateBoardSize(count)
		}
	}
}
