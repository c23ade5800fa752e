package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/huckstats/huck/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDeduper(t *testing.T) {
	Convey("Given an in-memory deduper", t, func() {
		d := dedupe.NewInMemoryDeduper()
		ctx := context.Background()

		Convey("When recording a fresh event id", func() {
			seen := d.SeenAndRecord(ctx, "evt-1")

			Convey("Then it reports the id as new", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And recording it again reports a duplicate", func() {
				So(d.SeenAndRecord(ctx, "evt-1"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When unrecording an id", func() {
			So(d.SeenAndRecord(ctx, "evt-2"), ShouldBeFalse)
			d.Unrecord(ctx, "evt-2")

			Convey("Then the id can be recorded again", func() {
				So(d.SeenAndRecord(ctx, "evt-2"), ShouldBeFalse)
			})
		})

		Convey("When unrecording an unknown id", func() {
			So(func() { d.Unrecord(ctx, "never-seen") }, ShouldNotPanic)
		})
	})
}

func TestDeduperBounded(t *testing.T) {
	Convey("Given a deduper bounded to three ids", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
		ctx := context.Background()

		Convey("When recording more ids than the bound", func() {
			for i := 0; i < 5; i++ {
				So(d.SeenAndRecord(ctx, fmt.Sprintf("evt-%d", i)), ShouldBeFalse)
			}

			Convey("Then the size stays at the bound", func() {
				So(d.Size(), ShouldEqual, 3)
			})

			Convey("And the oldest ids were evicted first", func() {
				// evt-0 and evt-1 were evicted, so they read as new again.
				So(d.SeenAndRecord(ctx, "evt-4"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "evt-0"), ShouldBeFalse)
			})
		})

		Convey("When an id is unrecorded before eviction would reach it", func() {
			So(d.SeenAndRecord(ctx, "a"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "b"), ShouldBeFalse)
			d.Unrecord(ctx, "a")
			So(d.SeenAndRecord(ctx, "c"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "d"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "e"), ShouldBeFalse)

			Convey("Then eviction skips the stale entry and keeps the bound", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "e"), ShouldBeTrue)
			})
		})
	})
}

func TestDeduperConcurrency(t *testing.T) {
	Convey("Given a shared deduper", t, func() {
		d := dedupe.NewInMemoryDeduper()
		ctx := context.Background()

		Convey("When many goroutines record the same id", func() {
			const workers = 32
			var wg sync.WaitGroup
			newCount := make(chan bool, workers)

			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					newCount <- !d.SeenAndRecord(ctx, "contested")
				}()
			}
			wg.Wait()
			close(newCount)

			Convey("Then exactly one goroutine observed it as new", func() {
				fresh := 0
				for wasNew := range newCount {
					if wasNew {
						fresh++
					}
				}
				So(fresh, ShouldEqual, 1)
				So(d.Size(), ShouldEqual, 1)
			})
		})
	})
}
