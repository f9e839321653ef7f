package cascade_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DrOst98/fc-koeln-dashboard/internal/domain/cascade"
	"github.com/DrOst98/fc-koeln-dashboard/internal/domain/categories"
	"github.com/DrOst98/fc-koeln-dashboard/internal/domain/features"
	. "github.com/smartystreets/goconvey/convey"
)

// A minimal two-leaf regressor over height plus a categorical foot
// column, exported in the artifact format the trainer emits.
const ensembleJSON = `{
  "version": "m-test-1",
  "base_score": 5,
  "features": [
    {"name": "height", "kind": "numeric"},
    {"name": "transferAge", "kind": "numeric"},
    {"name": "foot", "kind": "categorical"}
  ],
  "trees": [
    {"nodes": [
      {"feature": 0, "threshold": 175, "yes": 1, "no": 2, "missing": 1},
      {"feature": -1, "leaf": 30},
      {"feature": -1, "leaf": 60}
    ]}
  ],
  "importance": {"height": 0.8, "transferAge": 0.2}
}`

const identityCalibrationJSON = `{
  "version": "c-test-1",
  "knots": [{"x": 0, "y": 0}, {"x": 100, "y": 100}]
}`

const shiftCalibrationJSON = `{
  "version": "c-test-2",
  "knots": [{"x": 0, "y": 10}, {"x": 50, "y": 60}, {"x": 100, "y": 110}]
}`

func writeArtifact(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func testRegistry() categories.Mapping {
	return categories.Mapping{"foot": {"left", "right", "both"}}
}

func TestLoadEnsemble(t *testing.T) {
	Convey("Given a valid base-regressor artifact", t, func() {
		path := writeArtifact(t, "model.json", ensembleJSON)

		Convey("When loading it against the registry", func() {
			ens, err := cascade.LoadEnsemble(path, testRegistry())
			So(err, ShouldBeNil)

			Convey("Then version, schema and importance are exposed", func() {
				So(ens.Version(), ShouldEqual, "m-test-1")
				So(ens.Schema().Len(), ShouldEqual, 3)
				So(ens.Importance()["height"], ShouldEqual, 0.8)
			})
		})
	})

	Convey("Given broken artifacts", t, func() {
		cases := map[string]string{
			"not json":   `{"version": `,
			"no trees":   `{"version": "v", "features": [{"name": "height", "kind": "numeric"}], "trees": []}`,
			"bad kind":   `{"version": "v", "features": [{"name": "height", "kind": "text"}], "trees": [{"nodes": [{"feature": -1, "leaf": 1}]}]}`,
			"bad child":  `{"version": "v", "features": [{"name": "height", "kind": "numeric"}], "trees": [{"nodes": [{"feature": 0, "threshold": 1, "yes": 0, "no": 0, "missing": 0}]}]}`,
			"bad featix": `{"version": "v", "features": [{"name": "height", "kind": "numeric"}], "trees": [{"nodes": [{"feature": 7, "threshold": 1, "yes": 1, "no": 1, "missing": 1}, {"feature": -1, "leaf": 1}]}]}`,
		}
		for name, content := range cases {
			Convey("When loading the "+name+" artifact", func() {
				_, err := cascade.LoadEnsemble(writeArtifact(t, "model.json", content), testRegistry())

				Convey("Then loading fails with ErrArtifact", func() {
					So(errors.Is(err, cascade.ErrArtifact), ShouldBeTrue)
				})
			})
		}

		Convey("When the artifact file does not exist", func() {
			_, err := cascade.LoadEnsemble(filepath.Join(t.TempDir(), "missing.json"), testRegistry())
			So(errors.Is(err, cascade.ErrArtifact), ShouldBeTrue)
		})
	})
}

func TestLoadCalibration(t *testing.T) {
	Convey("Given calibration artifacts", t, func() {
		Convey("When loading a valid curve", func() {
			cal, err := cascade.LoadCalibration(writeArtifact(t, "cal.json", shiftCalibrationJSON))
			So(err, ShouldBeNil)
			So(cal.Version(), ShouldEqual, "c-test-2")
		})

		Convey("When the curve has fewer than two knots", func() {
			_, err := cascade.LoadCalibration(writeArtifact(t, "cal.json",
				`{"version": "v", "knots": [{"x": 0, "y": 0}]}`))
			So(errors.Is(err, cascade.ErrArtifact), ShouldBeTrue)
		})

		Convey("When knot x values are not strictly increasing", func() {
			_, err := cascade.LoadCalibration(writeArtifact(t, "cal.json",
				`{"version": "v", "knots": [{"x": 0, "y": 0}, {"x": 0, "y": 5}]}`))
			So(errors.Is(err, cascade.ErrArtifact), ShouldBeTrue)
		})
	})
}

func TestPredict(t *testing.T) {
	Convey("Given a loaded cascade and its builder", t, func() {
		reg := testRegistry()
		ens, err := cascade.LoadEnsemble(writeArtifact(t, "model.json", ensembleJSON), reg)
		So(err, ShouldBeNil)
		builder := features.NewBuilder(ens.Schema(), reg)

		raw := features.RawInput{Height: 180, TransferAge: 25, Foot: "left"}

		Convey("When predicting with an identity calibration", func() {
			cal, err := cascade.LoadCalibration(writeArtifact(t, "cal.json", identityCalibrationJSON))
			So(err, ShouldBeNil)
			casc := cascade.New(ens, cal)

			vec, err := builder.Build(raw)
			So(err, ShouldBeNil)
			res, err := casc.Predict(vec)
			So(err, ShouldBeNil)

			Convey("Then the raw score is base plus the routed leaf", func() {
				So(res.RawScore, ShouldEqual, 65) // 5 + 60: height 180 crosses the split
				So(res.CalibratedScore, ShouldEqual, 65)
			})

			Convey("Then the other branch routes below the threshold", func() {
				short := raw
				short.Height = 170
				vec, err := builder.Build(short)
				So(err, ShouldBeNil)
				res, err := casc.Predict(vec)
				So(err, ShouldBeNil)
				So(res.RawScore, ShouldEqual, 35) // 5 + 30
			})

			Convey("Then predicting twice gives identical results", func() {
				again, err := casc.Predict(vec)
				So(err, ShouldBeNil)
				So(again, ShouldResemble, res)
			})
		})

		Convey("When the calibration shifts the raw score", func() {
			cal, err := cascade.LoadCalibration(writeArtifact(t, "cal.json", shiftCalibrationJSON))
			So(err, ShouldBeNil)
			casc := cascade.New(ens, cal)

			vec, err := builder.Build(raw)
			So(err, ShouldBeNil)
			res, err := casc.Predict(vec)
			So(err, ShouldBeNil)

			Convey("Then stage 2 consumes only stage 1's scalar", func() {
				So(res.RawScore, ShouldEqual, 65)
				So(res.CalibratedScore, ShouldEqual, 75)
			})

			Convey("Then versions are reported from both artifacts", func() {
				So(casc.Version(), ShouldEqual, "m-test-1")
				So(casc.CalibrationVersion(), ShouldEqual, "c-test-2")
			})
		})

		Convey("When the raw score falls outside the calibration knot range", func() {
			narrow := `{"version": "c-narrow", "knots": [{"x": 0, "y": 0}, {"x": 10, "y": 5}]}`
			cal, err := cascade.LoadCalibration(writeArtifact(t, "cal.json", narrow))
			So(err, ShouldBeNil)
			casc := cascade.New(ens, cal)

			vec, err := builder.Build(raw)
			So(err, ShouldBeNil)
			res, err := casc.Predict(vec)
			So(err, ShouldBeNil)

			Convey("Then the boundary segment extends with its own slope", func() {
				So(res.RawScore, ShouldEqual, 65)
				So(res.CalibratedScore, ShouldEqual, 32.5) // slope 0.5 past the last knot
			})
		})

		Convey("When the vector does not match the model schema", func() {
			cal, err := cascade.LoadCalibration(writeArtifact(t, "cal.json", identityCalibrationJSON))
			So(err, ShouldBeNil)
			casc := cascade.New(ens, cal)

			other, err := features.NewSchema([]features.Field{
				{Name: "height", Kind: features.Numeric},
			}, reg)
			So(err, ShouldBeNil)
			vec, err := features.NewBuilder(other, reg).Build(features.RawInput{Height: 180, Foot: "left"})
			So(err, ShouldBeNil)

			Convey("Then prediction fails with ErrInference", func() {
				_, err := casc.Predict(vec)
				So(errors.Is(err, cascade.ErrInference), ShouldBeTrue)
			})

			Convey("Then a nil vector fails the same way", func() {
				_, err := casc.Predict(nil)
				So(errors.Is(err, cascade.ErrInference), ShouldBeTrue)
			})
		})
	})
}
