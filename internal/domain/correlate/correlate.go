// Package correlate computes Pearson correlation over aligned value pairs,
// with a significance estimate and a discrete strength band.
package correlate

import (
	"math"

	"github.com/okian/pelota/internal/domain/series"
)

// Strength band thresholds on the coefficient magnitude.
const (
	weakThreshold   = 0.3
	strongThreshold = 0.7
)

// Caveat qualifies every user-facing significance figure. Daily feed data is
// auto-correlated, so the t-statistic approximation understates uncertainty.
const Caveat = "significance is a t-statistic approximation over auto-correlated daily samples; read it as descriptive, not inferential"

// Band classifies correlation strength by coefficient magnitude.
type Band int

// Bands ordered by strength. BandNone is reserved for undefined results.
const (
	BandNone Band = iota
	BandWeak
	BandModerate
	BandStrong
)

// String returns the band name used in output and metric labels.
func (b Band) String() string {
	switch b {
	case BandWeak:
		return "weak"
	case BandModerate:
		return "moderate"
	case BandStrong:
		return "strong"
	default:
		return "none"
	}
}

// BandFor maps a coefficient magnitude to its strength band.
func BandFor(r float64) Band {
	switch abs := math.Abs(r); {
	case abs > strongThreshold:
		return BandStrong
	case abs >= weakThreshold:
		return BandModerate
	default:
		return BandWeak
	}
}

// Result captures one correlation computation. Derived, never mutated.
// An undefined result carries Band none and a Reason; callers must check
// Defined before reading the coefficient.
type Result struct {
	Coefficient  float64
	Significance float64
	Samples      int
	Band         Band
	Defined      bool
	Reason       string
}

// Compute runs the Pearson formula over an aligned pair. A zero-variance
// side yields an explicit undefined result instead of dividing by zero.
func Compute(pair *series.AlignedPair) Result {
	if pair == nil || pair.Len() < 2 {
		return Result{Significance: 1, Band: BandNone, Reason: "insufficient samples"}
	}

	x := pair.A()
	y := pair.B()
	n := len(x)

	meanX := mean(x)
	meanY := mean(y)

	var num, sumXX, sumYY float64
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		num += dx * dy
		sumXX += dx * dx
		sumYY += dy * dy
	}

	denom := math.Sqrt(sumXX * sumYY)
	if denom == 0 {
		return Result{Significance: 1, Samples: n, Band: BandNone, Reason: "zero variance"}
	}

	r := num / denom
	// Floating error can push |r| a hair past 1.
	r = math.Max(-1, math.Min(1, r))

	return Result{
		Coefficient:  r,
		Significance: significance(r, n),
		Samples:      n,
		Band:         BandFor(r),
		Defined:      true,
	}
}

// significance maps the coefficient through a t-statistic to a two-tailed
// normal-approximation p-value in [0,1]. Lower reads as more significant.
func significance(r float64, n int) float64 {
	if n <= 2 {
		return 1
	}
	rr := r * r
	if rr >= 1 {
		return 0
	}
	t := math.Abs(r) * math.Sqrt(float64(n-2)/(1-rr))
	p := 1 - math.Erf(t/math.Sqrt2)
	return math.Max(0, math.Min(1, p))
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
