package period_test

import (
	"testing"
	"time"

	"github.com/okian/wordle-buddy/internal/domain/period"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCalendarIndex(t *testing.T) {
	Convey("Given a calendar with the default epoch in UTC", t, func() {
		cal := period.MustNew(period.DefaultEpoch, time.UTC)

		Convey("When asking for the epoch day", func() {
			Convey("Then it is period 0 regardless of the clock", func() {
				So(cal.Index(time.Date(2021, 6, 19, 0, 0, 0, 0, time.UTC)), ShouldEqual, 0)
				So(cal.Index(time.Date(2021, 6, 19, 23, 59, 59, 0, time.UTC)), ShouldEqual, 0)
			})
		})

		Convey("When asking for a later day", func() {
			Convey("Then it counts whole days from the epoch", func() {
				So(cal.Index(time.Date(2022, 5, 6, 12, 0, 0, 0, time.UTC)), ShouldEqual, 321)
				So(cal.Date(321).Format("2006-01-02"), ShouldEqual, "2022-05-06")
			})
		})

		Convey("When the epoch is malformed", func() {
			_, err := period.New("19/06/2021", time.UTC)

			Convey("Then New fails", func() {
				So(err, ShouldWrap, period.ErrInvalidEpoch)
			})
		})
	})

	Convey("Given a calendar east of UTC", t, func() {
		loc := time.FixedZone("AEST", 10*60*60)
		cal := period.MustNew(period.DefaultEpoch, loc)

		Convey("When a universal instant is late on the previous UTC day", func() {
			arrival := time.Date(2022, 5, 5, 20, 0, 0, 0, time.UTC) // 06:00 on the 6th locally

			Convey("Then the local civil date decides the period", func() {
				So(cal.Index(arrival), ShouldEqual, 321)
				So(period.MustNew(period.DefaultEpoch, time.UTC).Index(arrival), ShouldEqual, 320)
			})
		})
	})
}

func TestCalendarWindows(t *testing.T) {
	Convey("Given a calendar in UTC", t, func() {
		cal := period.MustNew(period.DefaultEpoch, time.UTC)

		Convey("When today is a Wednesday the 27th", func() {
			now := time.Date(2021, 1, 27, 9, 0, 0, 0, time.UTC)

			Convey("Then week and month windows follow the ISO weekday and day of month", func() {
				So(cal.WeekDays(now), ShouldEqual, 3)
				So(cal.MonthDays(now), ShouldEqual, 27)
			})
		})

		Convey("When today is a Sunday", func() {
			now := time.Date(2022, 5, 8, 9, 0, 0, 0, time.UTC)

			Convey("Then the week window is 7 days", func() {
				So(cal.WeekDays(now), ShouldEqual, 7)
			})
		})

		Convey("When building a range", func() {
			now := time.Date(2022, 5, 6, 9, 0, 0, 0, time.UTC)

			Convey("Then it ends yesterday and excludes today", func() {
				So(cal.Range(now, 2), ShouldResemble, []int{319, 320})
				So(cal.Range(now, 0), ShouldBeEmpty)
			})
		})
	})
}
