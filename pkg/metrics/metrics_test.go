package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a private registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("sub"),
				WithMetricPrefix("x_"),
				WithHistogramBuckets([]float64{1, 2}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			m.recordsIngested.Add(2)

			Convey("Then names carry the namespace, subsystem and prefix", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var found bool
				for _, f := range families {
					if f.GetName() == "test_sub_x_records_ingested_total" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When options get empty values", func() {
			m := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(registry),
				WithPrometheusRegistry(nil),
			)

			Convey("Then defaults are kept", func() {
				So(m.namespace, ShouldEqual, "swimchamps")
				So(m.subsystem, ShouldEqual, "standings")
				So(m.histogramBuckets, ShouldNotBeEmpty)
				So(m.registry, ShouldEqual, registry)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording ingestion", func() {
			before := testutil.ToFloat64(globalManager.recordsIngested)
			RecordRecordsIngested(5)
			RecordRecordsRejected(1)
			RecordSnapshotStored()
			So(testutil.ToFloat64(globalManager.recordsIngested), ShouldEqual, before+5)
		})

		Convey("When recording a computation", func() {
			before := testutil.ToFloat64(globalManager.standingsComputed)
			RecordStandingsComputed(1.5, 42)
			RecordStandingsCacheHit()
			So(testutil.ToFloat64(globalManager.standingsComputed), ShouldEqual, before+1)
			So(testutil.ToFloat64(globalManager.swimmersScored), ShouldEqual, 42)
		})

		Convey("When recording exclusions by reason", func() {
			RecordEventsSelected(8)
			RecordEventsExcluded("cap_exceeded", 2)
			RecordEventsExcluded("outside_top_n", 3)
			So(testutil.ToFloat64(globalManager.eventsExcluded.WithLabelValues("outside_top_n")), ShouldBeGreaterThanOrEqualTo, 3)
		})

		Convey("When recording the remaining metrics", func() {
			So(func() {
				UpdateWorkerCount(4)
				RecordHTTPRequest("/meets", "GET", "200")
				RecordHTTPRequestDuration("/meets", "GET", "200", 3)
				RecordErrorByComponent("api", "not_found")
				RecordErrorByType("not_found", "warning")
				RecordErrorByEndpoint("/meets", "GET", "not_found")
				RecordRepositoryUpdateLatency(0.2)
				RecordRepositoryQueryLatency(0.1)
				UpdateRepositorySnapshots(3)
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(10)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
			So(testutil.ToFloat64(globalManager.workerCount), ShouldEqual, 4)
			So(testutil.ToFloat64(globalManager.repositorySnapshots), ShouldEqual, 3)
		})

		Convey("Then the exported registry serves them", func() {
			RecordSnapshotStored()
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			var names []string
			for _, f := range families {
				names = append(names, f.GetName())
			}
			So(strings.Join(names, ","), ShouldContainSubstring, "swimchamps_standings_snapshots_stored_total")
		})
	})
}
