// Package worker runs the session processing pipeline: persist the sample,
// grow the player's history, classify a tier, derive tuning parameters,
// refresh the ranking board, and broadcast the update.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/pelota/internal/domain/history"
	"github.com/okian/pelota/internal/domain/model"
	"github.com/okian/pelota/internal/domain/skill"
	"github.com/okian/pelota/internal/domain/tuning"
	"github.com/okian/pelota/internal/domain/types"
	"github.com/okian/pelota/pkg/logger"
	"github.com/okian/pelota/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Sample abstracts what workers read off the queue.
type Sample = model.Sample

// Store persists processed samples.
type Store interface {
	AppendSample(ctx context.Context, s model.Sample) error
}

// Board tracks per-player best scores for ranking.
type Board interface {
	Record(ctx context.Context, playerID string, score float64, tier string, games int) (bool, error)
}

// Historian hands out the mutable history for a player.
type Historian interface {
	For(playerID string) *history.History
}

// Classifier derives a skill tier from a window of samples.
type Classifier interface {
	Classify(samples []model.Sample) skill.Tier
}

// Adapter derives the parameter bundle for a tier and scoring trend.
type Adapter interface {
	Adapt(tier skill.Tier, trend tuning.Trend) tuning.Bundle
}

// Broadcaster pushes tuning updates to connected clients. Implementations
// must not block.
type Broadcaster interface {
	Broadcast(update types.TuningUpdate)
}

// Queue defines how workers receive samples.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Sample
}

// Deps bundles the pipeline collaborators a worker needs.
type Deps struct {
	Store       Store
	Board       Board
	Histories   Historian
	Classifier  Classifier
	Adapter     Adapter
	Broadcaster Broadcaster // optional
}

// Worker processes samples from the queue until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing session samples.
type InMemoryWorker struct {
	queue Queue
	deps  Deps
	name  string

	// Shutdown control
	stopOnce sync.Once
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, deps Deps, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		deps:     deps,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	sampleChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case sample, ok := <-sampleChan:
			if !ok {
				// Queue closed; backlog drained.
				return
			}

			if err := w.processSample(ctx, sample); err != nil {
				w.logger.Error(ctx, "error processing sample", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker. A second call returns ErrStopped.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	stopped := false
	w.stopOnce.Do(func() {
		close(w.shutdown)
		stopped = true
	})
	if !stopped {
		return ErrStopped
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processSample runs one sample through the full pipeline.
func (w *InMemoryWorker) processSample(ctx context.Context, sample Sample) error { //nolint:gocritic // hugeParam: Sample must be passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	h := w.deps.Histories.For(sample.PlayerID)

	// The trend compares this score against the average before it, so read
	// the aggregate before the sample joins the history.
	before := h.Averages()

	if err := w.deps.Store.AppendSample(ctx, sample); err != nil {
		w.logger.Error(ctx, "persisting sample failed",
			logger.String("sampleID", sample.SampleID),
			logger.Error(err),
		)
		return fmt.Errorf("failed to persist sample %s: %w", sample.SampleID, err)
	}

	h.Append(sample)

	tier := w.deps.Classifier.Classify(h.Snapshot())
	trend := tuning.Trend{Latest: sample.Score, Average: before.Score}
	bundle := w.deps.Adapter.Adapt(tier, trend)

	if _, err := w.deps.Board.Record(ctx, sample.PlayerID, sample.Score, tier.String(), h.Games()); err != nil {
		// The board is derived state; persisting succeeded, so log and
		// carry on rather than fail the sample.
		w.logger.Error(ctx, "board update failed",
			logger.String("playerID", sample.PlayerID),
			logger.Error(err),
		)
	}

	metrics.RecordSampleProcessed(tier.String())
	metrics.RecordTierAssignment(tier.String())

	if w.deps.Broadcaster != nil {
		w.deps.Broadcaster.Broadcast(types.TuningUpdate{
			PlayerID: sample.PlayerID,
			Tier:     tier.String(),
			Tuning:   bundle,
			At:       time.Now().UTC(),
		})
		metrics.RecordTuningUpdate()
	}

	return nil
}

// Pool manages multiple workers reading from one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	stopOnce sync.Once
	stop     chan struct{}

	logger logger.Logger
}

// NewPool creates a worker pool. A count below one falls back to a
// CPU-proportional default.
func NewPool(workerCount int, q Queue, deps Deps) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		stop:    make(chan struct{}),
		logger:  logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(q, deps, WithName("worker-"+strconv.Itoa(i)))
	}

	return pool
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	metrics.UpdateWorkerCount(len(p.workers))
}

// Shutdown closes the queue so workers drain the backlog, then waits for
// them to finish. A second call returns ErrStopped.
func (p *Pool) Shutdown(ctx context.Context) error {
	stopped := false
	p.stopOnce.Do(func() {
		close(p.stop)
		stopped = true
	})
	if !stopped {
		return ErrStopped
	}

	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	metrics.UpdateWorkerCount(0)
	return nil
}
