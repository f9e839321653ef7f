package cascade

import (
	"fmt"

	"github.com/DrOst98/fc-koeln-dashboard/internal/domain/features"
)

// Result carries both stages' outputs. The calibrated score is not
// clamped here; interpretation is the tier table's job.
type Result struct {
	RawScore        float64
	CalibratedScore float64
}

// Cascade chains the base regressor and the calibration curve in strict
// order: stage 2 only ever sees stage 1's scalar output.
type Cascade struct {
	ensemble    *Ensemble
	calibration *Calibration
}

// New wires the two loaded stages together.
func New(ensemble *Ensemble, calibration *Calibration) *Cascade {
	return &Cascade{ensemble: ensemble, calibration: calibration}
}

// Schema returns the base regressor's declared input schema.
func (c *Cascade) Schema() *features.Schema { return c.ensemble.Schema() }

// Version returns the base regressor artifact version.
func (c *Cascade) Version() string { return c.ensemble.Version() }

// CalibrationVersion returns the calibration artifact version.
func (c *Cascade) CalibrationVersion() string { return c.calibration.Version() }

// Importance returns the base regressor's per-field importance scores,
// or nil when the artifact carries none.
func (c *Cascade) Importance() map[string]float64 { return c.ensemble.Importance() }

// Predict runs both stages over a built vector. The vector's field set
// must exactly match the declared schema; a mismatch indicates builder
// or schema drift and fails with ErrInference.
func (c *Cascade) Predict(vec *features.Vector) (Result, error) {
	if vec == nil {
		return Result{}, fmt.Errorf("%w: nil vector", ErrInference)
	}
	if !vec.Schema().SameShape(c.ensemble.Schema()) {
		return Result{}, fmt.Errorf("%w: vector fields do not match model schema", ErrInference)
	}
	row, err := vec.Encode()
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInference, err)
	}
	raw := c.ensemble.score(row)
	return Result{
		RawScore:        raw,
		CalibratedScore: c.calibration.eval(raw),
	}, nil
}
