package dedupe_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/takepoint/coordinator/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new deduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper()

		Convey("When recording a fresh match id", func() {
			seen := d.SeenAndRecord(ctx, "match-1")

			Convey("Then it is newly recorded", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And a redelivery is detected", func() {
				So(d.SeenAndRecord(ctx, "match-1"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When unrecording after a failed enqueue", func() {
			d.SeenAndRecord(ctx, "match-1")
			d.Unrecord(ctx, "match-1")

			Convey("Then the id can be retried", func() {
				So(d.SeenAndRecord(ctx, "match-1"), ShouldBeFalse)
			})
		})
	})

	Convey("Given a deduper bounded to 3 ids", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))

		Convey("When recording past the bound", func() {
			for i := 0; i < 4; i++ {
				So(d.SeenAndRecord(ctx, fmt.Sprintf("match-%d", i)), ShouldBeFalse)
			}

			Convey("Then the oldest id is forgotten first", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "match-0"), ShouldBeFalse)
				So(d.SeenAndRecord(ctx, "match-3"), ShouldBeTrue)
			})
		})
	})
}
