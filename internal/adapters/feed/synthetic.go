package feed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	series "github.com/okian/pelota/internal/domain/series"
)

// Synthetic plasma parameters, shaped after typical solar wind
// readings: density in particles/cm3, speed in km/s, temperature in K.
// Every seventh day gets an activity spike on speed and density.
const (
	synthDensityMean = 8.0
	synthDensityStd  = 3.0
	synthSpeedMean   = 400.0
	synthSpeedStd    = 100.0
	synthTempMean    = 100000.0
	synthTempStd     = 50000.0

	synthSpikeEvery       = 7
	synthSpeedSpikeMean   = 200.0
	synthSpeedSpikeStd    = 50.0
	synthDensitySpikeMean = 5.0
	synthDensitySpikeStd  = 2.0
)

// Synthetic price walk parameters.
const (
	synthPriceBase  = 45000.0
	synthPriceStep  = 800.0
	synthPriceFloor = 1000.0
)

// SyntheticFeed deterministically generates a daily series shaped like
// its live counterpart. The same seed and window always produce the
// same series, which keeps fallback reports reproducible.
type SyntheticFeed struct {
	name  string
	seed  uint64
	clock func() time.Time
	build func(r *rand.Rand, days int) []float64
}

// Name returns the series name this feed produces.
func (f *SyntheticFeed) Name() string {
	return f.name
}

// Fetch generates the series. It never touches the network.
func (f *SyntheticFeed) Fetch(ctx context.Context, days int) Result {
	start := time.Now()
	res := f.generate(days)
	recordFetch(f.name, OriginSynthetic, start, res.Err)
	return res
}

func (f *SyntheticFeed) generate(days int) Result {
	if days <= 0 {
		days = defaultDays
	}

	r := rand.New(rand.NewPCG(f.seed, uint64(days)))
	vals := f.build(r, days)

	end := f.clock().UTC().Truncate(24 * time.Hour)
	b := series.NewBuilder(f.name)
	for i, v := range vals {
		b.Add(end.AddDate(0, 0, i-len(vals)+1), v)
	}

	s, err := b.Build()
	if err != nil {
		return Result{Origin: OriginSynthetic, Err: fmt.Errorf("%w: %w", ErrNoData, err)}
	}
	return Result{Series: s, Origin: OriginSynthetic}
}

// SyntheticPrice models a bounded random walk around a plausible
// market price.
func SyntheticPrice(opts ...Option) *SyntheticFeed {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &SyntheticFeed{
		name:  MetricPrice,
		seed:  cfg.seed,
		clock: cfg.clock,
		build: func(r *rand.Rand, days int) []float64 {
			vals := make([]float64, days)
			price := synthPriceBase
			for i := range vals {
				price += r.NormFloat64() * synthPriceStep
				if price < synthPriceFloor {
					price = synthPriceFloor
				}
				vals[i] = price
			}
			return vals
		},
	}
}

// SyntheticPlasma mirrors one NOAA plasma metric. metric must be one
// of MetricDensity, MetricSpeed, or MetricTemperature; anything else
// yields a flat zero series.
func SyntheticPlasma(metric string, opts ...Option) *SyntheticFeed {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	var mean, std, spikeMean, spikeStd float64
	switch metric {
	case MetricDensity:
		mean, std = synthDensityMean, synthDensityStd
		spikeMean, spikeStd = synthDensitySpikeMean, synthDensitySpikeStd
	case MetricSpeed:
		mean, std = synthSpeedMean, synthSpeedStd
		spikeMean, spikeStd = synthSpeedSpikeMean, synthSpeedSpikeStd
	case MetricTemperature:
		mean, std = synthTempMean, synthTempStd
	}

	return &SyntheticFeed{
		name:  metric,
		seed:  cfg.seed,
		clock: cfg.clock,
		build: func(r *rand.Rand, days int) []float64 {
			vals := make([]float64, days)
			for i := range vals {
				v := mean + r.NormFloat64()*std
				if spikeStd > 0 && i%synthSpikeEvery == 0 {
					v += spikeMean + r.NormFloat64()*spikeStd
				}
				vals[i] = v
			}
			return vals
		},
	}
}
