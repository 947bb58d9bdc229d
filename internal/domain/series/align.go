package series

import (
	"fmt"
	"time"
)

// Alignment constants.
const (
	minOverlap = 2
)

// AlignedPair holds two equal-length value sequences sharing an implicit
// common time grid. Invariant: both sides have the same length, at least 2.
type AlignedPair struct {
	a []float64
	b []float64
}

// NewAlignedPair validates and wraps two already-aligned value sequences.
func NewAlignedPair(a, b []float64) (*AlignedPair, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, fmt.Errorf("%w: aligned pair side has no values", ErrEmptyInput)
	}
	if len(a) != len(b) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrMisalignedLengths, len(a), len(b))
	}
	if len(a) < minOverlap {
		return nil, fmt.Errorf("%w: need at least %d aligned points, got %d", ErrInsufficientOverlap, minOverlap, len(a))
	}
	pa := make([]float64, len(a))
	pb := make([]float64, len(b))
	copy(pa, a)
	copy(pb, b)
	return &AlignedPair{a: pa, b: pb}, nil
}

// Len returns the number of aligned points.
func (p *AlignedPair) Len() int {
	return len(p.a)
}

// A returns a copy of the first side's values.
func (p *AlignedPair) A() []float64 {
	out := make([]float64, len(p.a))
	copy(out, p.a)
	return out
}

// B returns a copy of the second side's values.
func (p *AlignedPair) B() []float64 {
	out := make([]float64, len(p.b))
	copy(out, p.b)
	return out
}

// Align matches two series by nearest timestamp within a tolerance window.
// The sparser series drives the scan; each point in the denser series is
// matched at most once, and on equidistant candidates the earlier one wins.
// Points without a match within tolerance are dropped from both sides.
// Fails when fewer than 2 matched points remain.
func Align(a, b *TimeSeries, opts ...AlignOption) (*AlignedPair, error) {
	if a == nil || b == nil || a.Len() == 0 || b.Len() == 0 {
		return nil, fmt.Errorf("%w: alignment needs two non-empty series", ErrEmptyInput)
	}

	cfg := alignConfig{tolerance: DefaultTolerance}
	for _, opt := range opts {
		opt(&cfg)
	}

	base, other := a, b
	swapped := false
	if b.Len() < a.Len() {
		base, other = b, a
		swapped = true
	}

	baseVals := make([]float64, 0, base.Len())
	otherVals := make([]float64, 0, base.Len())

	j := 0
	for i := 0; i < base.Len(); i++ {
		p := base.At(i)

		// Both series are sorted, so slide the cursor forward while the
		// next candidate is strictly closer. Ties keep the earlier point.
		for j+1 < other.Len() && absDuration(other.At(j+1).TS.Sub(p.TS)) < absDuration(other.At(j).TS.Sub(p.TS)) {
			j++
		}
		if j >= other.Len() {
			break
		}
		if absDuration(other.At(j).TS.Sub(p.TS)) > cfg.tolerance {
			continue
		}

		baseVals = append(baseVals, p.Value)
		otherVals = append(otherVals, other.At(j).Value)
		j++
		if j >= other.Len() {
			break
		}
	}

	if len(baseVals) < minOverlap {
		return nil, fmt.Errorf("%w: %d points matched within tolerance %s", ErrInsufficientOverlap, len(baseVals), cfg.tolerance)
	}

	if swapped {
		return NewAlignedPair(otherVals, baseVals)
	}
	return NewAlignedPair(baseVals, otherVals)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
