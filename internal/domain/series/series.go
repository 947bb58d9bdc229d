// Package series provides immutable numeric time series and nearest-neighbor
// alignment of two series onto a shared implicit time grid.
package series

import (
	"fmt"
	"math"
	"time"
)

// Point is a single timestamped observation.
type Point struct {
	TS    time.Time
	Value float64
}

// TimeSeries is an ordered sequence of finite observations with strictly
// increasing timestamps. Immutable once built.
type TimeSeries struct {
	name   string
	points []Point
}

// New builds a TimeSeries from points. It rejects empty input, non-finite
// values, and timestamps that do not strictly increase.
func New(name string, points []Point) (*TimeSeries, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: series %q has no points", ErrEmptyInput, name)
	}
	owned := make([]Point, len(points))
	copy(owned, points)
	for i, p := range owned {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			return nil, fmt.Errorf("%w: series %q has non-finite value at index %d", ErrOutOfRange, name, i)
		}
		if i > 0 && !p.TS.After(owned[i-1].TS) {
			return nil, fmt.Errorf("%w: series %q timestamp at index %d does not advance", ErrOutOfRange, name, i)
		}
	}
	return &TimeSeries{name: name, points: owned}, nil
}

// Builder accumulates observations and silently drops the ones New would
// reject: non-finite values and timestamps that do not advance. Feeds use it
// to absorb dirty upstream data without failing the whole series.
type Builder struct {
	name    string
	points  []Point
	dropped int
}

// NewBuilder creates a builder for a named series.
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// Add appends an observation, dropping it if non-finite or out of order.
func (b *Builder) Add(ts time.Time, value float64) *Builder {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		b.dropped++
		return b
	}
	if n := len(b.points); n > 0 && !ts.After(b.points[n-1].TS) {
		b.dropped++
		return b
	}
	b.points = append(b.points, Point{TS: ts, Value: value})
	return b
}

// Dropped reports how many observations were discarded.
func (b *Builder) Dropped() int {
	return b.dropped
}

// Build finalizes the series. It fails when no observation survived.
func (b *Builder) Build() (*TimeSeries, error) {
	return New(b.name, b.points)
}

// Name returns the series name.
func (s *TimeSeries) Name() string {
	return s.name
}

// Len returns the number of observations.
func (s *TimeSeries) Len() int {
	return len(s.points)
}

// At returns the observation at index i. Panics when i is out of bounds,
// mirroring slice semantics.
func (s *TimeSeries) At(i int) Point {
	return s.points[i]
}

// Values returns a copy of the observation values in order.
func (s *TimeSeries) Values() []float64 {
	vals := make([]float64, len(s.points))
	for i, p := range s.points {
		vals[i] = p.Value
	}
	return vals
}

// Points returns a copy of the observations in order.
func (s *TimeSeries) Points() []Point {
	pts := make([]Point, len(s.points))
	copy(pts, s.points)
	return pts
}
