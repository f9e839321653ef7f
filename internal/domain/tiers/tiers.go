// Package tiers maps a calibrated playing-time score to a discrete tier
// label and display color over fixed, ordered thresholds.
package tiers

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Band is one half-open tier interval [previous upper, Upper). The final
// band's Upper is +Inf and catches every remaining score.
type Band struct {
	Upper float64
	Label string
	Color string // hex token, e.g. "#FF4B4B"
}

// Tier is the interpretation of a score.
type Tier struct {
	Label string
	Color string
}

// Table is an ordered, non-overlapping set of bands covering the whole
// real line. Immutable after construction.
type Table struct {
	bands []Band
}

// Default returns the production five-tier table.
func Default() *Table {
	t, _ := New([]Band{
		{Upper: 20, Label: "Not expected to play", Color: "#FF4B4B"},
		{Upper: 40, Label: "Expected to Be a Substitute", Color: "#FFA500"},
		{Upper: 60, Label: "Expected to Be a Rotation Player", Color: "#32CD32"},
		{Upper: 90, Label: "Expected to Be a Key Player", Color: "#008000"},
		{Upper: math.Inf(1), Label: "Next Starplayer", Color: "#015801"},
	})
	return t
}

// New validates and builds a table. The last band may omit Upper (zero
// or +Inf both mean unbounded); all earlier uppers must be finite and
// strictly ascending.
func New(bands []Band) (*Table, error) {
	if len(bands) < 2 {
		return nil, fmt.Errorf("tier table needs at least 2 bands, got %d", len(bands))
	}
	out := make([]Band, len(bands))
	copy(out, bands)
	last := len(out) - 1
	if out[last].Upper == 0 {
		out[last].Upper = math.Inf(1)
	}
	prev := math.Inf(-1)
	for i, b := range out {
		if b.Label == "" {
			return nil, fmt.Errorf("band %d has an empty label", i)
		}
		if i < last && math.IsInf(b.Upper, 1) {
			return nil, fmt.Errorf("band %d: only the final band may be unbounded", i)
		}
		if b.Upper <= prev {
			return nil, fmt.Errorf("band %d: uppers must be strictly ascending", i)
		}
		prev = b.Upper
	}
	if !math.IsInf(out[last].Upper, 1) {
		return nil, fmt.Errorf("final band must be unbounded")
	}
	return &Table{bands: out}, nil
}

// Bands returns the table contents for display.
func (t *Table) Bands() []Band {
	out := make([]Band, len(t.bands))
	copy(out, t.bands)
	return out
}

// Interpret maps a finite score to exactly one tier. Boundary scores
// resolve to the upper bucket. Non-finite input indicates an upstream
// cascade failure and fails with ErrInvalidScore.
func (t *Table) Interpret(score float64) (Tier, error) {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return Tier{}, fmt.Errorf("%w: %v", ErrInvalidScore, score)
	}
	for _, b := range t.bands {
		if score < b.Upper {
			return Tier{Label: b.Label, Color: b.Color}, nil
		}
	}
	// Unreachable: the final band is unbounded.
	last := t.bands[len(t.bands)-1]
	return Tier{Label: last.Label, Color: last.Color}, nil
}

// RGBA converts a "#RRGGBB" hex token to a CSS rgba() string for the
// display shell.
func RGBA(hex string, alpha float64) (string, error) {
	h := strings.TrimPrefix(hex, "#")
	if len(h) != 6 {
		return "", fmt.Errorf("invalid hex color %q", hex)
	}
	var rgb [3]int64
	for i := range rgb {
		v, err := strconv.ParseInt(h[2*i:2*i+2], 16, 16)
		if err != nil {
			return "", fmt.Errorf("invalid hex color %q: %w", hex, err)
		}
		rgb[i] = v
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %g)", rgb[0], rgb[1], rgb[2], alpha), nil
}
