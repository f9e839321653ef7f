package cascade

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// calibrationArtifact is the on-disk JSON export of the fitted
// calibration curve: a monotone piecewise-linear correction sampled at
// knots.
type calibrationArtifact struct {
	Version string `json:"version"`
	Knots   []knot `json:"knots"`
}

type knot struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Calibration corrects the base regressor's raw output. It consumes
// only the stage-1 scalar, never raw inputs.
type Calibration struct {
	version string
	knots   []knot
}

// LoadCalibration reads and validates a calibration artifact.
func LoadCalibration(path string) (*Calibration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrArtifact, path, err)
	}
	var art calibrationArtifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrArtifact, path, err)
	}
	if len(art.Knots) < 2 {
		return nil, fmt.Errorf("%w: %s: need at least 2 knots, got %d", ErrArtifact, path, len(art.Knots))
	}
	for i := 1; i < len(art.Knots); i++ {
		if art.Knots[i].X <= art.Knots[i-1].X {
			return nil, fmt.Errorf("%w: %s: knot x values must be strictly increasing", ErrArtifact, path)
		}
	}
	return &Calibration{version: art.Version, knots: art.Knots}, nil
}

// Version returns the artifact version string.
func (c *Calibration) Version() string { return c.version }

// eval interpolates linearly between knots. Outside the knot range the
// boundary segment extends with its own slope, so the correction stays
// defined for every finite input.
func (c *Calibration) eval(x float64) float64 {
	ks := c.knots
	if x <= ks[0].X {
		return extrapolate(ks[0], ks[1], x)
	}
	last := len(ks) - 1
	if x >= ks[last].X {
		return extrapolate(ks[last-1], ks[last], x)
	}
	// First knot with X > x; the segment to interpolate ends there.
	hi := sort.Search(len(ks), func(i int) bool { return ks[i].X > x })
	return extrapolate(ks[hi-1], ks[hi], x)
}

func extrapolate(a, b knot, x float64) float64 {
	slope := (b.Y - a.Y) / (b.X - a.X)
	return a.Y + slope*(x-a.X)
}
