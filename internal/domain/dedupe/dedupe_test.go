package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/okian/pelota/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSeenAndRecord(t *testing.T) {
	Convey("Given a fresh deduper", t, func() {
		d := dedupe.NewInMemoryDeduper()
		ctx := context.Background()

		Convey("When a sample ID arrives for the first time", func() {
			seen := d.SeenAndRecord(ctx, "sample-1")

			Convey("Then it should be newly recorded", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And a resubmit should be flagged", func() {
				So(d.SeenAndRecord(ctx, "sample-1"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When distinct IDs arrive", func() {
			for i := 0; i < 5; i++ {
				So(d.SeenAndRecord(ctx, fmt.Sprintf("sample-%d", i)), ShouldBeFalse)
			}

			Convey("Then each should be tracked independently", func() {
				So(d.Size(), ShouldEqual, 5)
				for i := 0; i < 5; i++ {
					So(d.SeenAndRecord(ctx, fmt.Sprintf("sample-%d", i)), ShouldBeTrue)
				}
			})
		})

		Convey("When the ID is empty", func() {
			Convey("Then it should still deduplicate", func() {
				So(d.SeenAndRecord(ctx, ""), ShouldBeFalse)
				So(d.SeenAndRecord(ctx, ""), ShouldBeTrue)
			})
		})

		Convey("When the caller passes no context", func() {
			Convey("Then nothing should panic", func() {
				So(func() { d.SeenAndRecord(nil, "sample-1") }, ShouldNotPanic)
				So(func() { d.Unrecord(nil, "sample-1") }, ShouldNotPanic)
			})
		})
	})
}

func TestUnrecord(t *testing.T) {
	Convey("Given a deduper with recorded IDs", t, func() {
		d := dedupe.NewInMemoryDeduper()
		ctx := context.Background()
		d.SeenAndRecord(ctx, "sample-1")
		d.SeenAndRecord(ctx, "sample-2")

		Convey("When an ID is unrecorded", func() {
			d.Unrecord(ctx, "sample-1")

			Convey("Then it should be retryable", func() {
				So(d.Size(), ShouldEqual, 1)
				So(d.SeenAndRecord(ctx, "sample-1"), ShouldBeFalse)
			})

			Convey("And other IDs should stay seen", func() {
				So(d.SeenAndRecord(ctx, "sample-2"), ShouldBeTrue)
			})
		})

		Convey("When an unknown ID is unrecorded", func() {
			d.Unrecord(ctx, "never-seen")

			Convey("Then nothing should change", func() {
				So(d.Size(), ShouldEqual, 2)
			})
		})
	})
}

func TestEviction(t *testing.T) {
	Convey("Given a deduper bounded to three IDs", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
		ctx := context.Background()
		for i := 1; i <= 3; i++ {
			d.SeenAndRecord(ctx, fmt.Sprintf("sample-%d", i))
		}

		Convey("When a fourth ID arrives", func() {
			So(d.SeenAndRecord(ctx, "sample-4"), ShouldBeFalse)

			Convey("Then the oldest ID should be forgotten first", func() {
				So(d.Size(), ShouldEqual, 3)
				// sample-1 was evicted, so it reads as new again.
				So(d.SeenAndRecord(ctx, "sample-1"), ShouldBeFalse)
				So(d.Size(), ShouldEqual, 3)
			})

			Convey("And the newest IDs should survive", func() {
				So(d.SeenAndRecord(ctx, "sample-3"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "sample-4"), ShouldBeTrue)
			})
		})

		Convey("When an ID is unrecorded before the set fills again", func() {
			d.Unrecord(ctx, "sample-1")
			So(d.SeenAndRecord(ctx, "sample-4"), ShouldBeFalse)

			Convey("Then the freed slot should absorb the insert", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "sample-2"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "sample-3"), ShouldBeTrue)
			})
		})
	})

	Convey("Given a deduper bounded to a single ID", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(1))
		ctx := context.Background()

		Convey("When two IDs alternate", func() {
			Convey("Then each insert should displace the other", func() {
				So(d.SeenAndRecord(ctx, "sample-a"), ShouldBeFalse)
				So(d.SeenAndRecord(ctx, "sample-b"), ShouldBeFalse)
				So(d.SeenAndRecord(ctx, "sample-a"), ShouldBeFalse)
				So(d.SeenAndRecord(ctx, "sample-b"), ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		ctx := context.Background()

		Convey("When the limit is zero", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
			for i := 0; i < 2000; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("sample-%d", i))
			}

			Convey("Then nothing should be evicted", func() {
				So(d.Size(), ShouldEqual, 2000)
				So(d.SeenAndRecord(ctx, "sample-0"), ShouldBeTrue)
			})
		})

		Convey("When the limit is negative", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(-1))
			for i := 0; i < 2000; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("sample-%d", i))
			}

			Convey("Then eviction should stay disabled", func() {
				So(d.Size(), ShouldEqual, 2000)
				So(d.SeenAndRecord(ctx, "sample-1999"), ShouldBeTrue)
			})
		})
	})
}

func TestConcurrentRecording(t *testing.T) {
	Convey("Given concurrent producers", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(10_000))
		ctx := context.Background()

		const producers = 8
		const perProducer = 200

		var wg sync.WaitGroup
		for p := 0; p < producers; p++ {
			wg.Add(1)
			go func(p int) {
				defer wg.Done()
				for i := 0; i < perProducer; i++ {
					d.SeenAndRecord(ctx, fmt.Sprintf("sample-%d-%d", p, i))
				}
			}(p)
		}
		wg.Wait()

		Convey("Then every unique ID should be tracked exactly once", func() {
			So(d.Size(), ShouldEqual, producers*perProducer)
		})

		Convey("And mixed record and unrecord calls should race safely", func() {
			var churn sync.WaitGroup
			for p := 0; p < producers; p++ {
				churn.Add(1)
				go func() {
					defer churn.Done()
					for i := 0; i < perProducer; i++ {
						d.SeenAndRecord(ctx, "sample-0-0")
						d.Unrecord(ctx, "sample-1-1")
					}
				}()
			}
			churn.Wait()
			So(d.SeenAndRecord(ctx, "sample-0-0"), ShouldBeTrue)
		})
	})
}
