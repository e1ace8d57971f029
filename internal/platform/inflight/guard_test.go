package inflight_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Overland-East-Bay/club-portal-api/internal/platform/inflight"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGuard(t *testing.T) {
	Convey("Given a new Guard", t, func() {
		ctx := context.Background()
		g := inflight.NewGuard()

		Convey("It starts empty", func() {
			So(g.Size(), ShouldEqual, 0)
		})

		Convey("When acquiring a free key", func() {
			ok := g.TryAcquire(ctx, "join:c1")

			Convey("Then the caller holds it", func() {
				So(ok, ShouldBeTrue)
				So(g.Size(), ShouldEqual, 1)
			})

			Convey("And a second acquire of the same key is refused", func() {
				So(g.TryAcquire(ctx, "join:c1"), ShouldBeFalse)
				So(g.Size(), ShouldEqual, 1)
			})

			Convey("And a different key is independent", func() {
				So(g.TryAcquire(ctx, "follow:c1"), ShouldBeTrue)
				So(g.Size(), ShouldEqual, 2)
			})

			Convey("And after release it can be acquired again", func() {
				g.Release(ctx, "join:c1")
				So(g.Size(), ShouldEqual, 0)
				So(g.TryAcquire(ctx, "join:c1"), ShouldBeTrue)
			})
		})

		Convey("When releasing a key that is not held", func() {
			g.Release(ctx, "nope")

			Convey("Then nothing changes", func() {
				So(g.Size(), ShouldEqual, 0)
			})
		})

		Convey("When many goroutines race for the same key", func() {
			var wins atomic.Int32
			var wg sync.WaitGroup
			for i := 0; i < 64; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if g.TryAcquire(ctx, "join:c1") {
						wins.Add(1)
					}
				}()
			}
			wg.Wait()

			Convey("Then exactly one wins", func() {
				So(wins.Load(), ShouldEqual, 1)
			})
		})

		Convey("When many distinct keys are acquired concurrently", func() {
			var wg sync.WaitGroup
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					g.TryAcquire(ctx, fmt.Sprintf("k-%d", i))
				}(i)
			}
			wg.Wait()

			Convey("Then all are held", func() {
				So(g.Size(), ShouldEqual, 50)
			})
		})
	})
}
