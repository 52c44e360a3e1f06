package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewManager(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with default options", func() {
			m := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created with defaults", func() {
				So(m, ShouldNotBeNil)
				So(m.namespace, ShouldEqual, "takepoint")
				So(m.subsystem, ShouldEqual, "coordinator")
			})
		})

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithPrometheusRegistry(registry),
				WithNamespace("game"),
				WithSubsystem("engine"),
				WithHistogramBuckets([]float64{1, 10, 100}),
			)

			Convey("Then the options should be applied", func() {
				So(m.namespace, ShouldEqual, "game")
				So(m.subsystem, ShouldEqual, "engine")
				So(m.histogramBuckets, ShouldResemble, []float64{1, 10, 100})
			})
		})
	})
}

func TestPackageHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording domain metrics", func() {
			So(func() {
				UpdateInstancesLive(3)
				RecordInstanceRegistration()
				RecordInstanceEvictions(2)
				UpdateSessionsActive(5)
				RecordSessionCreation()
				RecordSessionEvictions(1)
				RecordSessionRejection()
				RecordLeaderboardUpdate()
				RecordLeaderboardReset()
				RecordMatchReport()
				RecordMatchDuplicate()
				RecordMergeError()
				RecordMergeLatency(12.5)
				UpdateReportQueueSize(7)
				RecordReportQueueError()
				RecordAuthDrop()
				RecordSweepDuration("registry", 0.4)
				RecordHTTPRequest("gameState", "GET", "200")
				RecordHTTPRequestDuration("gameState", "GET", 1.5)
			}, ShouldNotPanic)
		})

		Convey("When fetching the metrics handler", func() {
			So(Handler(), ShouldNotBeNil)
		})
	})
}
