package features

import (
	"fmt"
	"math"
)

// missingCategoryCode is the encoded value for a categorical column the
// builder never populated, matching the training-time encoding of an
// absent category.
const missingCategoryCode = -1

// Vector is a fully populated model input row. Its field set always
// equals the schema's; it is immutable once built and discarded after
// the cascade consumes it.
type Vector struct {
	schema *Schema
	nums   []float64
	cats   []string
}

// Schema returns the schema this vector was built against.
func (v *Vector) Schema() *Schema { return v.schema }

// Numeric returns the value of a numeric field.
func (v *Vector) Numeric(name string) (float64, bool) {
	i, ok := v.schema.index[name]
	if !ok || v.schema.fields[i].Kind != Numeric {
		return 0, false
	}
	return v.nums[i], true
}

// Category returns the label of a categorical field. Empty string means
// the field was intentionally left unpopulated.
func (v *Vector) Category(name string) (string, bool) {
	i, ok := v.schema.index[name]
	if !ok || v.schema.fields[i].Kind != Categorical {
		return "", false
	}
	return v.cats[i], true
}

// Encode flattens the vector into the schema-ordered float row the tree
// ensemble consumes: numeric values as-is, categorical labels as their
// index in the declared category set, unset categories as the missing
// code.
func (v *Vector) Encode() ([]float64, error) {
	out := make([]float64, len(v.schema.fields))
	for i, f := range v.schema.fields {
		switch f.Kind {
		case Numeric:
			out[i] = v.nums[i]
		case Categorical:
			if v.cats[i] == "" {
				out[i] = missingCategoryCode
				continue
			}
			code := categoryIndex(f.Categories, v.cats[i])
			if code < 0 {
				return nil, fmt.Errorf("encode field %q: label %q not in declared categories", f.Name, v.cats[i])
			}
			out[i] = float64(code)
		}
	}
	return out, nil
}

// NonZero returns the populated fields for diagnostic display, skipping
// zero numeric values and empty categories.
func (v *Vector) NonZero() map[string]any {
	out := make(map[string]any)
	for i, f := range v.schema.fields {
		switch f.Kind {
		case Numeric:
			if v.nums[i] != 0 && !math.IsNaN(v.nums[i]) {
				out[f.Name] = v.nums[i]
			}
		case Categorical:
			if v.cats[i] != "" {
				out[f.Name] = v.cats[i]
			}
		}
	}
	return out
}

func categoryIndex(cats []string, label string) int {
	for i, c := range cats {
		if c == label {
			return i
		}
	}
	return -1
}
