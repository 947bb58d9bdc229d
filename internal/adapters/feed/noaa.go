package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	series "github.com/okian/pelota/internal/domain/series"
)

// defaultPlasmaURL is the NOAA SWPC solar wind plasma product.
const defaultPlasmaURL = "https://services.swpc.noaa.gov/products/solar-wind/plasma-7-day.json"

// plasmaCacheTTL bounds how long one download serves the metric feeds.
const plasmaCacheTTL = time.Minute

// plasmaTimeLayout matches the time_tag cells in the NOAA product.
const plasmaTimeLayout = "2006-01-02 15:04:05.000"

// plasmaColumns maps series names onto NOAA table columns.
var plasmaColumns = map[string]string{ //nolint:gochecknoglobals // static column mapping
	MetricDensity:     "density",
	MetricSpeed:       "speed",
	MetricTemperature: "temperature",
}

// PlasmaClient downloads the NOAA solar wind plasma table and serves
// per-metric daily mean series from a single download. The upstream
// product carries density, speed, and temperature in one table, so
// the three metric feeds share this client.
type PlasmaClient struct {
	baseURL string
	client  *http.Client

	mu        sync.Mutex
	fetchedAt time.Time
	daily     map[string][]series.Point
}

// NewPlasmaClient creates a live plasma client.
func NewPlasmaClient(opts ...Option) *PlasmaClient {
	cfg := defaultConfig()
	cfg.baseURL = defaultPlasmaURL
	for _, opt := range opts {
		opt(&cfg)
	}
	return &PlasmaClient{
		baseURL: cfg.baseURL,
		client:  cfg.client,
	}
}

// Density returns the daily mean particle density feed.
func (c *PlasmaClient) Density() Feed {
	return &plasmaFeed{metric: MetricDensity, client: c}
}

// Speed returns the daily mean solar wind speed feed.
func (c *PlasmaClient) Speed() Feed {
	return &plasmaFeed{metric: MetricSpeed, client: c}
}

// Temperature returns the daily mean plasma temperature feed.
func (c *PlasmaClient) Temperature() Feed {
	return &plasmaFeed{metric: MetricTemperature, client: c}
}

// plasmaFeed exposes one metric column of the shared plasma table.
type plasmaFeed struct {
	metric string
	client *PlasmaClient
}

func (f *plasmaFeed) Name() string {
	return f.metric
}

func (f *plasmaFeed) Fetch(ctx context.Context, days int) Result {
	start := time.Now()
	res := f.client.metricSeries(ctx, f.metric, days)
	recordFetch(f.metric, OriginLive, start, res.Err)
	return res
}

// metricSeries serves one metric from the cached table, downloading it
// when missing or stale. The lock doubles as a singleflight: when the
// three metric feeds fetch concurrently, only the first downloads.
func (c *PlasmaClient) metricSeries(ctx context.Context, metric string, days int) Result {
	if days <= 0 {
		days = defaultDays
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.daily == nil || time.Since(c.fetchedAt) > plasmaCacheTTL {
		daily, err := c.download(ctx)
		if err != nil {
			return Result{Origin: OriginLive, Err: err}
		}
		c.daily = daily
		c.fetchedAt = time.Now()
	}

	pts := c.daily[metric]
	if len(pts) > days {
		pts = pts[len(pts)-days:]
	}
	s, err := series.New(metric, pts)
	if err != nil {
		return Result{Origin: OriginLive, Err: fmt.Errorf("%w: %w", ErrNoData, err)}
	}
	return Result{Series: s, Origin: OriginLive}
}

// download fetches the plasma table and reduces it to daily means per
// metric. The first row names the columns; the rest are string cells.
// Cells that fail to parse are dropped rather than failing the table.
func (c *PlasmaClient) download(ctx context.Context) (map[string][]series.Point, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d from plasma feed", ErrFetchFailed, resp.StatusCode)
	}

	var table [][]string
	if err := json.NewDecoder(resp.Body).Decode(&table); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailed, err)
	}
	if len(table) < 2 {
		return nil, fmt.Errorf("%w: plasma table has no data rows", ErrNoData)
	}

	idx := make(map[string]int, len(table[0]))
	for i, name := range table[0] {
		idx[name] = i
	}
	timeIdx, ok := idx["time_tag"]
	if !ok {
		return nil, fmt.Errorf("%w: plasma table missing time_tag column", ErrDecodeFailed)
	}

	type agg struct {
		sum float64
		n   int
	}
	sums := make(map[string]map[time.Time]*agg, len(plasmaColumns))
	for metric := range plasmaColumns {
		sums[metric] = make(map[time.Time]*agg)
	}

	for _, row := range table[1:] {
		if timeIdx >= len(row) {
			continue
		}
		ts, err := time.Parse(plasmaTimeLayout, row[timeIdx])
		if err != nil {
			continue
		}
		day := ts.UTC().Truncate(24 * time.Hour)

		for metric, col := range plasmaColumns {
			ci, ok := idx[col]
			if !ok || ci >= len(row) {
				continue
			}
			v, err := strconv.ParseFloat(row[ci], 64)
			if err != nil {
				continue
			}
			a := sums[metric][day]
			if a == nil {
				a = &agg{}
				sums[metric][day] = a
			}
			a.sum += v
			a.n++
		}
	}

	daily := make(map[string][]series.Point, len(plasmaColumns))
	for metric, perDay := range sums {
		keys := make([]time.Time, 0, len(perDay))
		for day := range perDay {
			keys = append(keys, day)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

		pts := make([]series.Point, 0, len(keys))
		for _, day := range keys {
			a := perDay[day]
			pts = append(pts, series.Point{TS: day, Value: a.sum / float64(a.n)})
		}
		daily[metric] = pts
	}
	return daily, nil
}
