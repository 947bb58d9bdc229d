package app

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/pelota/internal/adapters/feed"
	"github.com/okian/pelota/internal/domain/correlate"
	"github.com/okian/pelota/internal/domain/series"
	"github.com/okian/pelota/internal/domain/types"
	"github.com/okian/pelota/pkg/metrics"
)

// Report window bounds. The price upstream serves at most a year of
// daily candles, and fewer than two days cannot produce a pair.
const (
	minReportDays = 2
	maxReportDays = 365
)

// Solar wind speed thresholds for the activity insight, in km/s.
const (
	highActivitySpeed     = 600.0
	moderateActivitySpeed = 450.0
)

type cachedReport struct {
	report  types.CorrelationReport
	expires time.Time
}

// buildFeeds wires the report data sources for the configured mode.
// Called under s.mu from Start.
func (s *Service) buildFeeds() {
	client := &http.Client{Timeout: s.feedTimeout}

	livePrice := feed.NewPriceFeed(
		feed.WithBaseURL(s.priceURL),
		feed.WithHTTPClient(client),
	)
	synthPrice := feed.SyntheticPrice(feed.WithSeed(s.feedSeed))

	plasma := feed.NewPlasmaClient(
		feed.WithBaseURL(s.solarURL),
		feed.WithHTTPClient(client),
	)
	livePlasma := []feed.Feed{plasma.Density(), plasma.Speed(), plasma.Temperature()}
	synthPlasma := []feed.Feed{
		feed.SyntheticPlasma(feed.MetricDensity, feed.WithSeed(s.feedSeed)),
		feed.SyntheticPlasma(feed.MetricSpeed, feed.WithSeed(s.feedSeed)),
		feed.SyntheticPlasma(feed.MetricTemperature, feed.WithSeed(s.feedSeed)),
	}

	switch s.feedMode {
	case "live":
		s.priceFeed = livePrice
		s.plasmaFeeds = livePlasma
	case "synthetic":
		s.priceFeed = synthPrice
		s.plasmaFeeds = synthPlasma
	default:
		s.priceFeed = feed.NewFallback(livePrice, synthPrice)
		s.plasmaFeeds = make([]feed.Feed, len(livePlasma))
		for i := range livePlasma {
			s.plasmaFeeds[i] = feed.NewFallback(livePlasma[i], synthPlasma[i])
		}
	}
}

// Report returns the price/solar correlation report for a window of
// days, building it on demand and caching it per window.
func (s *Service) Report(ctx context.Context, days int) (types.CorrelationReport, error) {
	if days <= 0 {
		days = s.reportDays
	}
	if days < minReportDays {
		days = minReportDays
	}
	if days > maxReportDays {
		days = maxReportDays
	}

	s.reportMu.Lock()
	if cached, ok := s.reports[days]; ok && time.Now().Before(cached.expires) {
		s.reportMu.Unlock()
		metrics.RecordReportCacheHit()
		return cached.report, nil
	}
	s.reportMu.Unlock()

	start := time.Now()
	report, err := s.buildReport(ctx, days)
	if err != nil {
		return types.CorrelationReport{}, err
	}
	metrics.RecordReportBuilt()
	metrics.RecordReportBuildDuration(float64(time.Since(start).Milliseconds()))

	s.reportMu.Lock()
	s.reports[days] = cachedReport{report: report, expires: time.Now().Add(s.reportCacheTTL)}
	s.reportMu.Unlock()

	return report, nil
}

// buildReport fetches all feeds concurrently and correlates the price
// series against each solar wind metric. A price failure aborts the
// report; a failed solar metric degrades to an undefined row.
func (s *Service) buildReport(ctx context.Context, days int) (types.CorrelationReport, error) {
	g, gctx := errgroup.WithContext(ctx)

	var priceRes feed.Result
	g.Go(func() error {
		priceRes = s.priceFeed.Fetch(gctx, days)
		if priceRes.Err != nil {
			return fmt.Errorf("price feed: %w", priceRes.Err)
		}
		return nil
	})

	plasmaRes := make([]feed.Result, len(s.plasmaFeeds))
	for i, f := range s.plasmaFeeds {
		g.Go(func() error {
			plasmaRes[i] = f.Fetch(gctx, days)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return types.CorrelationReport{}, err
	}

	rows := make([]types.CorrelationRow, 0, len(s.plasmaFeeds))
	var speedSeries *series.TimeSeries
	for i, f := range s.plasmaFeeds {
		rows = append(rows, s.correlationRow(priceRes.Series, f.Name(), plasmaRes[i]))
		if f.Name() == feed.MetricSpeed && plasmaRes[i].Err == nil {
			speedSeries = plasmaRes[i].Series
		}
	}

	prices := priceRes.Series
	report := types.CorrelationReport{
		From:        prices.At(0).TS,
		To:          prices.At(prices.Len() - 1).TS,
		Days:        days,
		PriceOrigin: priceRes.Origin,
		SolarOrigin: solarOriginOf(plasmaRes),
		Rows:        rows,
		Insights:    buildInsights(prices, speedSeries, rows),
		Caveat:      correlate.Caveat,
		GeneratedAt: time.Now().UTC(),
	}
	return report, nil
}

// correlationRow aligns one solar metric against the price series and
// computes its correlation.
func (s *Service) correlationRow(prices *series.TimeSeries, metric string, res feed.Result) types.CorrelationRow {
	if res.Err != nil {
		return types.CorrelationRow{Metric: metric, Note: "feed unavailable: " + res.Err.Error()}
	}

	pair, err := series.Align(prices, res.Series, series.WithTolerance(s.alignTolerance))
	if err != nil {
		return types.CorrelationRow{Metric: metric, Note: err.Error()}
	}

	cres := correlate.Compute(pair)
	metrics.RecordCorrelation(cres.Band.String())

	row := types.CorrelationRow{
		Metric:       metric,
		Coefficient:  cres.Coefficient,
		Significance: cres.Significance,
		Band:         cres.Band.String(),
		Direction:    directionOf(cres),
		Samples:      cres.Samples,
		Defined:      cres.Defined,
	}
	if !cres.Defined {
		row.Note = cres.Reason
	}
	return row
}

func directionOf(res correlate.Result) string {
	switch {
	case !res.Defined:
		return ""
	case res.Coefficient > 0:
		return "positive"
	case res.Coefficient < 0:
		return "negative"
	default:
		return "flat"
	}
}

// solarOriginOf summarizes where the solar metrics came from.
func solarOriginOf(results []feed.Result) string {
	origin := ""
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		if origin == "" {
			origin = res.Origin
		} else if origin != res.Origin {
			return "mixed"
		}
	}
	if origin == "" {
		return "unavailable"
	}
	return origin
}

// buildInsights produces the headline observations for a report.
func buildInsights(prices, speeds *series.TimeSeries, rows []types.CorrelationRow) []string {
	insights := make([]string, 0, 3)

	if best := strongestRow(rows); best != nil {
		insights = append(insights, fmt.Sprintf(
			"strongest price link: %s (r=%.2f, %s, %s)",
			best.Metric, best.Coefficient, best.Band, best.Direction,
		))
	} else {
		insights = append(insights, "no defined correlation in this window")
	}

	if speeds != nil && speeds.Len() > 0 {
		latest := speeds.At(speeds.Len() - 1).Value
		insights = append(insights, fmt.Sprintf(
			"solar wind activity %s (latest speed %.0f km/s)",
			activityLevel(latest), latest,
		))
	}

	if prices.Len() > 1 {
		first := prices.At(0).Value
		latest := prices.At(prices.Len() - 1).Value
		if first != 0 {
			change := (latest - first) / first * 100
			insights = append(insights, fmt.Sprintf(
				"price moved %+.1f%% over the window (latest %.2f usd)",
				change, latest,
			))
		}
	}

	return insights
}

// strongestRow picks the defined row with the largest absolute
// coefficient. Returns nil when no row is defined.
func strongestRow(rows []types.CorrelationRow) *types.CorrelationRow {
	var best *types.CorrelationRow
	for i := range rows {
		if !rows[i].Defined {
			continue
		}
		if best == nil || math.Abs(rows[i].Coefficient) > math.Abs(best.Coefficient) {
			best = &rows[i]
		}
	}
	return best
}

func activityLevel(speed float64) string {
	switch {
	case speed > highActivitySpeed:
		return "high"
	case speed > moderateActivitySpeed:
		return "moderate"
	default:
		return "low"
	}
}
