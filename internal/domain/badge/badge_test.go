package badge_test

import (
	"testing"

	"github.com/takepoint/coordinator/internal/domain/badge"
	"github.com/takepoint/coordinator/internal/domain/stats"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGrantEligible(t *testing.T) {
	Convey("Given a profile short of every predicate", t, func() {
		profile := stats.NewProfile(0)
		profile.Score = 99_999

		Convey("Then nothing is granted", func() {
			So(badge.GrantEligible(profile, 1000), ShouldBeEmpty)
			So(profile.Badges, ShouldBeEmpty)
		})
	})

	Convey("Given a profile meeting the pacifist predicate", t, func() {
		profile := stats.NewProfile(0)
		profile.Score = 100_000
		profile.DamageDealt = 0

		Convey("When granting", func() {
			granted := badge.GrantEligible(profile, 1234)

			Convey("Then the badge is appended with the grant timestamp", func() {
				So(granted, ShouldHaveLength, 1)
				So(granted[0].Name, ShouldEqual, "pacifist")
				So(granted[0].Timestamp, ShouldEqual, 1234)
				So(profile.HasBadge("pacifist"), ShouldBeTrue)
			})

			Convey("And a second evaluation grants nothing new", func() {
				So(badge.GrantEligible(profile, 5678), ShouldBeEmpty)
				So(profile.Badges, ShouldHaveLength, 1)
				So(profile.Badges[0].Timestamp, ShouldEqual, 1234)
			})

			Convey("And the grant is never revoked by later damage", func() {
				profile.DamageDealt = 500
				So(badge.GrantEligible(profile, 9999), ShouldBeEmpty)
				So(profile.HasBadge("pacifist"), ShouldBeTrue)
			})
		})
	})
}
