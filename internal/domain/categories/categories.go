// Package categories loads and exposes the fixed categorical vocabulary
// consumed by the trained model and the similarity engine.
package categories

import (
	"encoding/json"
	"fmt"
	"os"
)

// Fields the model depends on. Load fails when any of them is absent
// from the definition artifact.
var requiredFields = []string{
	"from_competition_competition_area",
	"to_competition_competition_area",
	"positionGroup",
	"mainPosition",
	"foot",
	"scorer_before_grouped_category",
	"clean_sheets_before_grouped",
}

// Mapping is the field name to ordered valid category labels table.
// It is loaded once at process start and read-only afterwards.
type Mapping map[string][]string

// Load reads a category definition artifact (JSON object of field name
// to list of strings) and validates its shape.
func Load(path string) (Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrLoad, path, err)
	}
	var m Mapping
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrLoad, path, err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, path, err)
	}
	return m, nil
}

func (m Mapping) validate() error {
	if len(m) == 0 {
		return fmt.Errorf("empty mapping")
	}
	for field, cats := range m {
		if len(cats) == 0 {
			return fmt.Errorf("field %q has no categories", field)
		}
		seen := make(map[string]struct{}, len(cats))
		for _, c := range cats {
			if c == "" {
				return fmt.Errorf("field %q contains an empty category", field)
			}
			if _, dup := seen[c]; dup {
				return fmt.Errorf("field %q repeats category %q", field, c)
			}
			seen[c] = struct{}{}
		}
	}
	for _, field := range requiredFields {
		if _, ok := m[field]; !ok {
			return fmt.Errorf("missing required field %q", field)
		}
	}
	return nil
}

// Categories returns the ordered category list for a field.
func (m Mapping) Categories(field string) ([]string, bool) {
	cats, ok := m[field]
	return cats, ok
}

// Contains reports whether value is a valid category for field.
func (m Mapping) Contains(field, value string) bool {
	for _, c := range m[field] {
		if c == value {
			return true
		}
	}
	return false
}

// Index returns the position of value in field's category list, or -1.
// The position doubles as the numeric encoding the model was trained on.
func (m Mapping) Index(field, value string) int {
	for i, c := range m[field] {
		if c == value {
			return i
		}
	}
	return -1
}
