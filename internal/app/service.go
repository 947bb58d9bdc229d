// Package app wires the ingest pipeline, persistence, ranking board, data
// feeds, and broadcast hub into one service implementing the dependencies
// the HTTP API requires.
package app

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/okian/pelota/internal/adapters/archive"
	"github.com/okian/pelota/internal/adapters/feed"
	"github.com/okian/pelota/internal/adapters/mq/queue"
	"github.com/okian/pelota/internal/adapters/mq/worker"
	"github.com/okian/pelota/internal/adapters/repository"
	"github.com/okian/pelota/internal/adapters/ws"
	"github.com/okian/pelota/internal/domain/dedupe"
	"github.com/okian/pelota/internal/domain/history"
	"github.com/okian/pelota/internal/domain/model"
	"github.com/okian/pelota/internal/domain/skill"
	"github.com/okian/pelota/internal/domain/tuning"
	"github.com/okian/pelota/internal/domain/types"
	"github.com/okian/pelota/pkg/logger"
	"github.com/okian/pelota/pkg/metrics"
)

// Service implements the API dependencies for the tuning system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store       repository.SampleStore
	board       repository.Board
	deduper     dedupe.Deduper
	sampleQueue queue.Queue
	workerPool  *worker.Pool
	hub         *ws.Hub
	classifier  *skill.Classifier
	adapter     *tuning.Adapter

	// Per-player histories, keyed by player ID.
	histMu    sync.RWMutex
	histories map[string]*history.History

	// Feeds for the correlation report.
	priceFeed   feed.Feed
	plasmaFeeds []feed.Feed

	// Report cache, keyed by window length in days.
	reportMu sync.Mutex
	reports  map[int]cachedReport

	// Configuration
	workerCount     int
	queueSize       int
	dedupeSize      int
	historyWindow   int
	minSamples      int
	historyCapacity int
	alignTolerance  time.Duration
	reportDays      int
	reportCacheTTL  time.Duration
	feedMode        string
	feedTimeout     time.Duration
	feedSeed        uint64
	priceURL        string
	solarURL        string
	storeDriver     string
	storeDSN        string
	archiveDir      string

	// State
	started bool

	// Logging
	logger logger.Logger
}

type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the sample queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHistoryWindow sets how many recent games classification looks at.
func WithHistoryWindow(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.historyWindow = n
		}
	}
}

// WithMinSamples sets the cold start threshold for classification.
func WithMinSamples(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.minSamples = n
		}
	}
}

// WithHistoryCapacity bounds how many samples each player history
// retains in memory.
func WithHistoryCapacity(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.historyCapacity = n
		}
	}
}

// WithAlignTolerance sets the matching tolerance for series alignment
// in correlation reports.
func WithAlignTolerance(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.alignTolerance = d
		}
	}
}

// WithReportDays sets the default correlation report window.
func WithReportDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.reportDays = days
		}
	}
}

// WithReportCacheTTL sets how long a built report stays fresh.
func WithReportCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.reportCacheTTL = ttl
		}
	}
}

// WithFeedMode selects the report data sources: live, synthetic, or
// auto (live with synthetic fallback).
func WithFeedMode(mode string) Option {
	return func(s *Service) {
		switch mode {
		case "live", "synthetic", "auto":
			s.feedMode = mode
		}
	}
}

// WithFeedTimeout bounds each upstream feed request.
func WithFeedTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.feedTimeout = d
		}
	}
}

// WithFeedSeed seeds the synthetic feed generators.
func WithFeedSeed(seed uint64) Option {
	return func(s *Service) {
		if seed > 0 {
			s.feedSeed = seed
		}
	}
}

// WithFeedURLs overrides the upstream price and solar wind endpoints.
func WithFeedURLs(priceURL, solarURL string) Option {
	return func(s *Service) {
		if priceURL != "" {
			s.priceURL = priceURL
		}
		if solarURL != "" {
			s.solarURL = solarURL
		}
	}
}

// WithStore selects the sample store driver and its DSN.
func WithStore(driver, dsn string) Option {
	return func(s *Service) {
		if driver != "" {
			s.storeDriver = driver
		}
		if dsn != "" {
			s.storeDSN = dsn
		}
	}
}

// WithArchiveDir sets where player exports are written.
func WithArchiveDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.archiveDir = dir
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		histories:       make(map[string]*history.History),
		reports:         make(map[int]cachedReport),
		workerCount:     runtime.NumCPU() * 2,
		queueSize:       10_000,
		dedupeSize:      100_000,
		historyWindow:   10,
		minSamples:      3,
		historyCapacity: 100,
		alignTolerance:  24 * time.Hour,
		reportDays:      30,
		reportCacheTTL:  5 * time.Minute,
		feedMode:        "auto",
		feedTimeout:     10 * time.Second,
		feedSeed:        42,
		storeDriver:     "sqlite",
		storeDSN:        "file:pelota.db?_pragma=journal_mode(WAL)",
		archiveDir:      "archives",
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("app")
	}

	s.logger.Info(ctx, "starting tuning service...")

	store, err := repository.OpenStore(ctx, s.storeDriver, s.storeDSN)
	if err != nil {
		return fmt.Errorf("opening sample store: %w", err)
	}
	s.store = store

	s.board = repository.NewTreapBoard(ctx)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.sampleQueue = queue.NewInMemoryQueue(
		queue.WithCapacity(s.queueSize),
	)
	s.classifier = skill.New(
		skill.WithWindow(s.historyWindow),
		skill.WithMinSamples(s.minSamples),
	)
	s.adapter = tuning.New()
	s.hub = ws.NewHub()
	s.buildFeeds()

	s.histMu.Lock()
	s.histories = make(map[string]*history.History)
	s.histMu.Unlock()

	if err := s.replayStore(ctx); err != nil {
		return fmt.Errorf("replaying stored history: %w", err)
	}

	s.workerPool = worker.NewPool(s.workerCount, s.sampleQueue, worker.Deps{
		Store:       s.store,
		Board:       s.board,
		Histories:   s,
		Classifier:  s.classifier,
		Adapter:     s.adapter,
		Broadcaster: s.hub,
	})
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "tuning service started",
		logger.Int("workers", s.workerPool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.String("storeDriver", s.storeDriver),
		logger.String("feedMode", s.feedMode),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping tuning service...")

	// Shutting the pool down closes the queue and drains the backlog.
	if s.workerPool != nil {
		if err := s.workerPool.Shutdown(ctx); err != nil {
			s.logger.Error(ctx, "worker pool shutdown", logger.Error(err))
		}
	}

	if s.board != nil {
		if err := s.board.Close(); err != nil {
			s.logger.Error(ctx, "closing board", logger.Error(err))
		}
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error(ctx, "closing store", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "tuning service stopped")
}

// For returns the history for a player, creating it on first use. This
// satisfies the worker pool's Historian dependency.
func (s *Service) For(playerID string) *history.History {
	s.histMu.RLock()
	h, ok := s.histories[playerID]
	s.histMu.RUnlock()
	if ok {
		return h
	}

	s.histMu.Lock()
	defer s.histMu.Unlock()
	if h, ok := s.histories[playerID]; ok {
		return h
	}
	h = history.New(history.WithCapacity(s.historyCapacity))
	s.histories[playerID] = h
	return h
}

// historyOf looks a player's history up without creating one.
func (s *Service) historyOf(playerID string) (*history.History, bool) {
	s.histMu.RLock()
	defer s.histMu.RUnlock()
	h, ok := s.histories[playerID]
	return h, ok
}

// replayStore rebuilds in-memory state from persisted samples: player
// histories, dedupe IDs, and board standings.
func (s *Service) replayStore(ctx context.Context) error {
	ids, err := s.store.PlayerIDs(ctx)
	if err != nil {
		return fmt.Errorf("listing players: %w", err)
	}

	var replayed int
	for _, id := range ids {
		samples, err := s.store.RecentSamples(ctx, id, 0)
		if err != nil {
			return fmt.Errorf("loading samples for %s: %w", id, err)
		}

		h := s.For(id)
		for i := range samples {
			h.Append(samples[i])
			s.deduper.SeenAndRecord(ctx, samples[i].SampleID)
			replayed++
		}

		tier := s.classifier.Classify(h.Snapshot())
		if _, err := s.board.Record(ctx, id, h.BestScore(), tier.String(), h.Games()); err != nil {
			return fmt.Errorf("restoring standing for %s: %w", id, err)
		}
	}

	if replayed > 0 {
		s.logger.Info(ctx, "replayed stored history",
			logger.Int("players", len(ids)),
			logger.Int("samples", replayed),
		)
	}
	return nil
}

// SeenAndRecord atomically checks if a sample id was seen and records it if
// not. Returns true if the sample was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordSampleIngested("duplicate")
	}
	return seen
}

// Unrecord removes a sample ID from the seen list, allowing a retry.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Enqueue submits a sample for asynchronous processing. Returns false when
// the queue is full.
func (s *Service) Enqueue(ctx context.Context, sample model.Sample) bool { //nolint:gocritic // hugeParam: Sample must be passed by value for channel semantics
	ok := s.sampleQueue.Enqueue(ctx, sample)
	if ok {
		metrics.RecordSampleIngested("queued")
	} else {
		metrics.RecordSampleIngested("rejected")
	}
	return ok
}

// TopN returns the top N ranking entries.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	entries, err := s.board.TopN(ctx, n)
	if err != nil {
		return nil, err
	}

	out := make([]types.Entry, len(entries))
	for i, e := range entries {
		out[i] = toEntry(e)
	}
	return out, nil
}

// Rank returns the ranking entry for a given player id.
func (s *Service) Rank(ctx context.Context, playerID string) (types.Entry, error) {
	entry, err := s.board.Rank(ctx, playerID)
	if err != nil {
		return types.Entry{}, err
	}
	return toEntry(entry), nil
}

func toEntry(e repository.Entry) types.Entry {
	return types.Entry{
		Rank:      e.Rank,
		PlayerID:  e.PlayerID,
		BestScore: e.BestScore,
		Tier:      e.Tier,
		Games:     e.Games,
	}
}

// Profile assembles the full analytics view of one player.
func (s *Service) Profile(ctx context.Context, playerID string) (types.PlayerProfile, error) {
	h, ok := s.historyOf(playerID)
	if !ok || h.Games() == 0 {
		return types.PlayerProfile{}, fmt.Errorf("%w: %s", repository.ErrNotFound, playerID)
	}

	avgs := h.Averages()
	tier := s.classifier.Classify(h.Snapshot())
	preferred, _ := h.PreferredDirection()

	return types.PlayerProfile{
		PlayerID:           playerID,
		Tier:               tier.String(),
		Games:              avgs.Games,
		BestScore:          h.BestScore(),
		AvgScore:           avgs.Score,
		AvgDurationSeconds: avgs.Duration,
		DeathCauses:        h.DeathCauses(),
		PreferredMove:      preferred,
		PredictedMove:      h.PredictNextMove(),
		Tuning:             s.tuningFor(h, tier),
	}, nil
}

// Tuning returns the parameters the player's next session should use.
func (s *Service) Tuning(ctx context.Context, playerID string) (types.TuningUpdate, error) {
	h, ok := s.historyOf(playerID)
	if !ok || h.Games() == 0 {
		return types.TuningUpdate{}, fmt.Errorf("%w: %s", repository.ErrNotFound, playerID)
	}

	tier := s.classifier.Classify(h.Snapshot())
	return types.TuningUpdate{
		PlayerID: playerID,
		Tier:     tier.String(),
		Tuning:   s.tuningFor(h, tier),
		At:       time.Now().UTC(),
	}, nil
}

// tuningFor recomputes the bundle the pipeline would have produced for the
// player's latest sample: the trend compares it against the average of the
// games before it.
func (s *Service) tuningFor(h *history.History, tier skill.Tier) tuning.Bundle {
	avgs := h.Averages()
	var trend tuning.Trend
	if recent := h.Recent(1); len(recent) == 1 && avgs.Games > 1 {
		latest := recent[0].Score
		prior := (avgs.Score*float64(avgs.Games) - latest) / float64(avgs.Games-1)
		trend = tuning.Trend{Latest: latest, Average: prior}
	}
	return s.adapter.Adapt(tier, trend)
}

// Export writes the player's stored samples to a compressed archive and
// returns its path.
func (s *Service) Export(ctx context.Context, playerID string) (string, error) {
	samples, err := s.store.RecentSamples(ctx, playerID, 0)
	if err != nil {
		return "", fmt.Errorf("loading samples: %w", err)
	}
	if len(samples) == 0 {
		return "", fmt.Errorf("%w: %s", repository.ErrNotFound, playerID)
	}
	return archive.Export(s.archiveDir, playerID, samples)
}

// Subscribe upgrades the request to a WebSocket on the tuning update
// stream.
func (s *Service) Subscribe(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	hub := s.hub
	s.mu.RUnlock()

	if hub == nil {
		http.Error(w, "service not started", http.StatusServiceUnavailable)
		return
	}
	hub.Subscribe(w, r)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":        s.started,
		"workers":        s.workerCount,
		"queue_capacity": s.queueSize,
	}

	if s.deduper != nil {
		stats["dedupe_size"] = s.deduper.Size()
	}

	if s.started {
		stats["queue_length"] = s.sampleQueue.Len(ctx)
		stats["players_ranked"] = s.board.Count(ctx)
		stats["ws_clients"] = s.hub.ClientCount()
		if n, err := s.store.SampleCount(ctx); err == nil {
			stats["samples_stored"] = n
		}
		if families, err := metrics.FamilyCount(); err == nil {
			stats["metric_families"] = families
		}
	}

	return stats
}
