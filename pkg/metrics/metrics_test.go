package metrics_test

import (
	"testing"

	"github.com/DrOst98/fc-koeln-dashboard/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGlobalManager(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("Then the registry is available", func() {
			So(metrics.GetRegistry(), ShouldNotBeNil)
		})

		Convey("Then recording helpers never panic", func() {
			So(func() {
				metrics.RecordPrediction(12.5, 61.2)
				metrics.RecordPredictionError("unknown_category")
				metrics.RecordSimilarityQuery(3.1, 3)
				metrics.RecordSimilarityQuery(1.0, 0)
				metrics.SetReferenceRecords(1200)
				metrics.SetArtifactInfo("2024.1", "2024.1")
				metrics.RecordHTTPRequest("predict", "POST", "200")
				metrics.RecordHTTPRequestDuration("predict", "POST", "200", 9.9)
			}, ShouldNotPanic)
		})

		Convey("Then recorded families are gatherable", func() {
			families, err := metrics.GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
			names := make(map[string]bool, len(families))
			for _, f := range families {
				names[f.GetName()] = true
			}
			So(names["transfer_predictor_predictions_total"], ShouldBeTrue)
			So(names["transfer_predictor_similarity_queries_total"], ShouldBeTrue)
		})
	})
}

func TestNewManagerOptions(t *testing.T) {
	Convey("Given a manager on its own registry", t, func() {
		reg := prometheus.NewRegistry()

		Convey("Then construction does not collide with the global one", func() {
			So(func() {
				_ = metrics.NewManager(
					metrics.WithNamespace("testing"),
					metrics.WithSubsystem("isolated"),
					metrics.WithRegistry(reg),
				)
			}, ShouldNotPanic)
			families, err := reg.Gather()
			So(err, ShouldBeNil)
			// Counters without observations still register; gauges only
			// appear once set, so just assert the registry is usable.
			So(families, ShouldNotBeNil)
		})
	})
}
