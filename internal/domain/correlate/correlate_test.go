package correlate_test

import (
	"math"
	"math/rand/v2"
	"testing"

	correlate "github.com/okian/pelota/internal/domain/correlate"
	series "github.com/okian/pelota/internal/domain/series"
	. "github.com/smartystreets/goconvey/convey"
)

func mustPair(a, b []float64) *series.AlignedPair {
	pair, err := series.NewAlignedPair(a, b)
	So(err, ShouldBeNil)
	return pair
}

func TestCompute(t *testing.T) {
	Convey("Given aligned value pairs", t, func() {
		Convey("When a series is correlated with itself", func() {
			vals := []float64{3, 1, 4, 1, 5, 9, 2, 6}
			result := correlate.Compute(mustPair(vals, vals))

			Convey("Then the coefficient should be 1", func() {
				So(result.Defined, ShouldBeTrue)
				So(result.Coefficient, ShouldAlmostEqual, 1.0, 1e-9)
				So(result.Band, ShouldEqual, correlate.BandStrong)
				So(result.Samples, ShouldEqual, len(vals))
			})
		})

		Convey("When a series is correlated with its negation", func() {
			vals := []float64{3, 1, 4, 1, 5, 9, 2, 6}
			neg := make([]float64, len(vals))
			for i, v := range vals {
				neg[i] = -v
			}
			result := correlate.Compute(mustPair(vals, neg))

			Convey("Then the coefficient should be -1", func() {
				So(result.Defined, ShouldBeTrue)
				So(result.Coefficient, ShouldAlmostEqual, -1.0, 1e-9)
				So(result.Band, ShouldEqual, correlate.BandStrong)
			})
		})

		Convey("When sides are swapped", func() {
			a := []float64{1, 5, 2, 8, 3}
			b := []float64{2, 4, 4, 9, 1}
			forward := correlate.Compute(mustPair(a, b))
			backward := correlate.Compute(mustPair(b, a))

			Convey("Then the coefficient should be symmetric", func() {
				So(forward.Coefficient, ShouldAlmostEqual, backward.Coefficient, 1e-12)
				So(forward.Significance, ShouldAlmostEqual, backward.Significance, 1e-12)
			})
		})

		Convey("When inputs are random finite series", func() {
			rng := rand.New(rand.NewPCG(7, 11))

			Convey("Then the coefficient should always stay in [-1, 1]", func() {
				for trial := 0; trial < 50; trial++ {
					n := 2 + rng.IntN(60)
					a := make([]float64, n)
					b := make([]float64, n)
					for i := 0; i < n; i++ {
						a[i] = rng.NormFloat64() * 1000
						b[i] = rng.NormFloat64() * 1000
					}
					result := correlate.Compute(mustPair(a, b))
					So(result.Coefficient, ShouldBeBetweenOrEqual, -1.0, 1.0)
					So(result.Significance, ShouldBeBetweenOrEqual, 0.0, 1.0)
				}
			})
		})

		Convey("When one side has zero variance", func() {
			result := correlate.Compute(mustPair(
				[]float64{5, 5, 5, 5},
				[]float64{1, 2, 3, 4},
			))

			Convey("Then the result should be explicitly undefined", func() {
				So(result.Defined, ShouldBeFalse)
				So(result.Band, ShouldEqual, correlate.BandNone)
				So(result.Significance, ShouldEqual, 1.0)
				So(result.Reason, ShouldEqual, "zero variance")
				So(result.Samples, ShouldEqual, 4)
			})
		})

		Convey("When the pair is missing", func() {
			result := correlate.Compute(nil)

			Convey("Then the result should be explicitly undefined", func() {
				So(result.Defined, ShouldBeFalse)
				So(result.Band, ShouldEqual, correlate.BandNone)
				So(result.Reason, ShouldEqual, "insufficient samples")
			})
		})

		Convey("When values follow the linear end-to-end example", func() {
			result := correlate.Compute(mustPair(
				[]float64{100, 105, 110},
				[]float64{1, 2, 3},
			))

			Convey("Then it should report a strong positive correlation", func() {
				So(result.Defined, ShouldBeTrue)
				So(result.Coefficient, ShouldAlmostEqual, 1.0, 1e-9)
				So(result.Band, ShouldEqual, correlate.BandStrong)
			})
		})
	})
}

func TestSignificance(t *testing.T) {
	Convey("Given the significance estimate", t, func() {
		Convey("When the coefficient is zero", func() {
			result := correlate.Compute(mustPair(
				[]float64{1, 2, 3, 4},
				[]float64{2, 4, 1, 3},
			))

			Convey("Then the estimate should be 1", func() {
				So(result.Coefficient, ShouldAlmostEqual, 0.0, 1e-9)
				So(result.Significance, ShouldAlmostEqual, 1.0, 1e-9)
			})
		})

		Convey("When correlation is perfect", func() {
			result := correlate.Compute(mustPair(
				[]float64{1, 2, 3},
				[]float64{10, 20, 30},
			))

			Convey("Then the estimate should be 0", func() {
				So(result.Significance, ShouldEqual, 0.0)
			})
		})

		Convey("When only two samples exist", func() {
			result := correlate.Compute(mustPair(
				[]float64{1, 2},
				[]float64{5, 9},
			))

			Convey("Then the estimate should be 1 regardless of fit", func() {
				So(result.Significance, ShouldEqual, 1.0)
			})
		})

		Convey("When the same coefficient has more samples behind it", func() {
			small := correlate.Compute(mustPair(
				[]float64{1, 2, 3, 4},
				[]float64{2, 1, 4, 3},
			))
			big := correlate.Compute(mustPair(
				[]float64{1, 2, 3, 4, 1, 2, 3, 4, 1, 2, 3, 4, 1, 2, 3, 4},
				[]float64{2, 1, 4, 3, 2, 1, 4, 3, 2, 1, 4, 3, 2, 1, 4, 3},
			))

			Convey("Then more samples should read as more significant", func() {
				So(small.Coefficient, ShouldAlmostEqual, big.Coefficient, 1e-9)
				So(big.Significance, ShouldBeLessThan, small.Significance)
			})
		})
	})
}

func TestBands(t *testing.T) {
	Convey("Given the band thresholds", t, func() {
		cases := []struct {
			r    float64
			band correlate.Band
		}{
			{0.0, correlate.BandWeak},
			{0.29, correlate.BandWeak},
			{-0.29, correlate.BandWeak},
			{0.3, correlate.BandModerate},
			{0.5, correlate.BandModerate},
			{0.7, correlate.BandModerate},
			{-0.6, correlate.BandModerate},
			{0.71, correlate.BandStrong},
			{-0.9, correlate.BandStrong},
			{1.0, correlate.BandStrong},
		}

		Convey("When mapping coefficients", func() {
			for _, tc := range cases {
				So(correlate.BandFor(tc.r), ShouldEqual, tc.band)
			}
		})

		Convey("When printing band names", func() {
			So(correlate.BandNone.String(), ShouldEqual, "none")
			So(correlate.BandWeak.String(), ShouldEqual, "weak")
			So(correlate.BandModerate.String(), ShouldEqual, "moderate")
			So(correlate.BandStrong.String(), ShouldEqual, "strong")
			So(correlate.Band(99).String(), ShouldEqual, "none")
		})

		Convey("When computing a moderate correlation", func() {
			result := correlate.Compute(mustPair(
				[]float64{1, 2, 3, 4},
				[]float64{2, 1, 4, 3},
			))

			Convey("Then the band should follow the coefficient", func() {
				So(result.Coefficient, ShouldAlmostEqual, 0.6, 1e-9)
				So(result.Band, ShouldEqual, correlate.BandModerate)
			})
		})
	})
}

func TestCaveat(t *testing.T) {
	Convey("Given the published caveat", t, func() {
		Convey("Then it should warn about the approximation", func() {
			So(correlate.Caveat, ShouldNotBeEmpty)
			So(correlate.Caveat, ShouldContainSubstring, "t-statistic")
		})
	})
}

func TestResultImmutability(t *testing.T) {
	Convey("Given a computed result", t, func() {
		a := []float64{1, 2, 3, 4, 5}
		b := []float64{2, 4, 6, 8, 10}
		pair := mustPair(a, b)
		first := correlate.Compute(pair)
		second := correlate.Compute(pair)

		Convey("Then recomputation should be deterministic", func() {
			So(second, ShouldResemble, first)
		})

		Convey("And NaN should never leak out of a defined result", func() {
			So(math.IsNaN(first.Coefficient), ShouldBeFalse)
			So(math.IsNaN(first.Significance), ShouldBeFalse)
		})
	})
}
