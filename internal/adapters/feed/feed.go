// Package feed provides the time series sources behind the correlation
// report: live market and space weather pulls plus deterministic
// synthetic stand-ins for when upstreams are unreachable.
package feed

import (
	"context"
	"time"

	series "github.com/okian/pelota/internal/domain/series"
	metrics "github.com/okian/pelota/pkg/metrics"
)

// Origins reported in fetch results.
const (
	OriginLive      = "live"
	OriginSynthetic = "synthetic"
)

// Series names shared by live feeds and their synthetic counterparts.
const (
	MetricPrice       = "price_usd"
	MetricDensity     = "plasma_density"
	MetricSpeed       = "plasma_speed"
	MetricTemperature = "plasma_temperature"
)

// defaultDays is used when a caller asks for a non-positive window.
const defaultDays = 30

// Result carries a fetched series together with where it came from.
// Err rides alongside the payload so callers can choose between
// failing outright and degrading to a backup source.
type Result struct {
	Series *series.TimeSeries
	Origin string
	Err    error
}

// Feed produces a named time series covering roughly the requested
// number of days. Implementations must be safe for concurrent use.
type Feed interface {
	Name() string
	Fetch(ctx context.Context, days int) Result
}

// recordFetch reports one fetch attempt to the metrics layer.
func recordFetch(name, origin string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordFeedFetch(name, origin, status)
	metrics.RecordFeedFetchDuration(name, float64(time.Since(start).Milliseconds()))
}
