// Package config carries process configuration for the tuning service.
//
// Conventions:
// - New returns workable defaults; Load layers file and env on top.
// - Load never mutates a Config it already handed out.
// - Failures wrap the package sentinels so callers can errors.Is them.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// SampleQueueSize bounds the in-memory session sample queue.
	SampleQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of tuning workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// HistoryWindow sets how many recent sessions feed classification.
	HistoryWindow int `koanf:"history_window"`

	// MinSamples is the cold-start cutoff below which players stay beginner.
	MinSamples int `koanf:"min_samples"`

	// HistoryCapacity bounds the per-player retained session window.
	HistoryCapacity int `koanf:"history_capacity"`

	// MaxBoardLimit caps GET /rankings?limit.
	MaxBoardLimit int `koanf:"max_board_limit"`

	// AlignToleranceHours is the matching window for joining feed series.
	AlignToleranceHours int `koanf:"align_tolerance_hours"`

	// ReportDays sets the default correlation report window.
	ReportDays int `koanf:"report_days"`

	// ReportCacheSeconds sets how long a built report stays fresh.
	ReportCacheSeconds int `koanf:"report_cache_seconds"`

	// FeedTimeoutSeconds bounds each upstream feed request.
	FeedTimeoutSeconds int `koanf:"feed_timeout_seconds"`

	// FeedMode selects feed sourcing: auto, live, or synthetic.
	FeedMode string `koanf:"feed_mode"`

	// PriceFeedURL and SolarFeedURL point at the upstream data sources.
	PriceFeedURL string `koanf:"price_feed_url"`
	SolarFeedURL string `koanf:"solar_feed_url"`

	// FeedSeed seeds the synthetic feed generators.
	FeedSeed int `koanf:"feed_seed"`

	// StoreDriver selects sample persistence: sqlite, postgres, or memory.
	StoreDriver string `koanf:"store_driver"`

	// StoreDSN is the data source name for the selected driver.
	StoreDSN string `koanf:"store_dsn"`

	// ArchiveDir is where player exports are written.
	ArchiveDir string `koanf:"archive_dir"`

	// CORSOrigins is a comma-separated list of allowed origins.
	CORSOrigins string `koanf:"cors_origins"`
}

// New creates a Config populated with defaults. Callers that need
// file or environment layering should use Load instead.
func New() *Config {
	c := &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		SampleQueueSize:     10_000,
		WorkerCount:         runtime.NumCPU() * 2,
		DedupeSize:          100_000,
		HistoryWindow:       10,
		MinSamples:          3,
		HistoryCapacity:     100,
		MaxBoardLimit:       100,
		AlignToleranceHours: 24,
		ReportDays:          30,
		ReportCacheSeconds:  300,
		FeedTimeoutSeconds:  10,
		FeedMode:            "auto",
		PriceFeedURL:        "https://api.coingecko.com/api/v3/coins/bitcoin/market_chart",
		SolarFeedURL:        "https://services.swpc.noaa.gov/products/solar-wind/plasma-7-day.json",
		FeedSeed:            42,
		StoreDriver:         "sqlite",
		StoreDSN:            "file:pelota.db?_pragma=journal_mode(WAL)",
		ArchiveDir:          "archives",
		CORSOrigins:         "*",
	}
	return c
}
