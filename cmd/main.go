package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/okian/pelota/internal/adapters/http/api"
	"github.com/okian/pelota/internal/adapters/http/site"
	"github.com/okian/pelota/internal/adapters/http/swagger"
	app "github.com/okian/pelota/internal/app"
	"github.com/okian/pelota/internal/config"
	"github.com/okian/pelota/pkg/logger"
	"github.com/okian/pelota/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	runtimeMetricsInterval    = 10 * time.Second
	pipelineMetricsInterval   = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Drop the default collectors; observe exports our own runtime health.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		// Logger isn't available yet, stderr is all we have.
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
	}
}

// run wires config, service, and HTTP server together and blocks until the
// context is cancelled or the server dies.
func run(ctx context.Context) error {
	log := logger.Get()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Apply configured log level (fallback to info on invalid input).
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := newService(cfg, log)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	go observe(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, svc, cfg),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// newService builds the tuning service from loaded configuration.
func newService(cfg *config.Config, log logger.Logger) *app.Service {
	return app.New(
		app.WithLogger(log),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.SampleQueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithHistoryWindow(cfg.HistoryWindow),
		app.WithMinSamples(cfg.MinSamples),
		app.WithHistoryCapacity(cfg.HistoryCapacity),
		app.WithAlignTolerance(time.Duration(cfg.AlignToleranceHours)*time.Hour),
		app.WithReportDays(cfg.ReportDays),
		app.WithReportCacheTTL(time.Duration(cfg.ReportCacheSeconds)*time.Second),
		app.WithFeedMode(cfg.FeedMode),
		app.WithFeedTimeout(time.Duration(cfg.FeedTimeoutSeconds)*time.Second),
		app.WithFeedSeed(uint64(cfg.FeedSeed)),
		app.WithFeedURLs(cfg.PriceFeedURL, cfg.SolarFeedURL),
		app.WithStore(cfg.StoreDriver, cfg.StoreDSN),
		app.WithArchiveDir(cfg.ArchiveDir),
	)
}

// newHandler assembles the full route tree: landing page, API reference,
// and the business API wrapped in CORS.
func newHandler(ctx context.Context, svc *app.Service, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()
	site.Register(ctx, mux)
	swagger.Register(ctx, mux)

	apiServer := api.NewServer(svc, svc, cfg.MaxBoardLimit)
	apiServer.Register(mux)

	return api.CORSMiddleware(corsOrigins(cfg.CORSOrigins))(mux)
}

// corsOrigins splits the configured comma-separated origin list.
func corsOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

// observe refreshes runtime and pipeline gauges until ctx is cancelled.
// Counters are pushed at their sources; the tickers here keep the headline
// gauges live even when the pipeline is idle.
func observe(ctx context.Context, svc *app.Service) {
	runtimeTick := time.NewTicker(runtimeMetricsInterval)
	defer runtimeTick.Stop()
	pipelineTick := time.NewTicker(pipelineMetricsInterval)
	defer pipelineTick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-runtimeTick.C:
			observeRuntime()
		case <-pipelineTick.C:
			observePipeline(svc)
		}
	}
}

// observeRuntime samples process-level health from the Go runtime.
func observeRuntime() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// observePipeline mirrors the service's headline stats into gauges.
func observePipeline(svc *app.Service) {
	stats := svc.GetStats()

	if queueLen, ok := stats["queue_length"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}

	if ranked, ok := stats["players_ranked"].(int); ok {
		metrics.UpdatePlayersTracked(ranked)
	}

	if workers, ok := stats["workers"].(int); ok {
		metrics.UpdateWorkerCount(workers)
	}
}
