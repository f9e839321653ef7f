// Package features builds model input vectors from raw transfer inputs.
//
// The schema object mirrors the trained model's declared input columns;
// the builder zero-fills unused columns, computes derived features and
// enforces categorical validity against the registry.
package features

import (
	"fmt"

	"github.com/DrOst98/fc-koeln-dashboard/internal/domain/categories"
)

// Kind discriminates schema field types.
type Kind int

const (
	// Numeric fields carry float64 values (booleans as 0/1).
	Numeric Kind = iota
	// Categorical fields carry a label constrained by the registry.
	Categorical
)

// Field is one declared model input column.
type Field struct {
	Name string
	Kind Kind
	// Categories is the allowed label set for categorical fields, in
	// the encoding order the model was trained with.
	Categories []string
}

// Schema is the ordered input column set of the trained model.
// Constructed once at startup from the model artifact and the category
// registry; immutable afterwards.
type Schema struct {
	fields []Field
	index  map[string]int
}

// NewSchema builds a schema from declared fields, resolving category
// sets for categorical fields from the registry.
func NewSchema(fields []Field, reg categories.Mapping) (*Schema, error) {
	s := &Schema{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("schema field with empty name")
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, fmt.Errorf("schema repeats field %q", f.Name)
		}
		if f.Kind == Categorical && len(f.Categories) == 0 {
			cats, ok := reg.Categories(f.Name)
			if !ok {
				return nil, fmt.Errorf("categorical field %q missing from registry", f.Name)
			}
			f.Categories = cats
		}
		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	if len(s.fields) == 0 {
		return nil, fmt.Errorf("schema has no fields")
	}
	return s, nil
}

// Len returns the number of declared fields.
func (s *Schema) Len() int { return len(s.fields) }

// Fields returns the declared fields in model order.
func (s *Schema) Fields() []Field { return s.fields }

// Field looks up a field by name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Names returns the ordered field names.
func (s *Schema) Names() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.Name
	}
	return out
}

// SameShape reports whether other declares the identical ordered field set.
func (s *Schema) SameShape(other *Schema) bool {
	if other == nil || len(s.fields) != len(other.fields) {
		return false
	}
	for i := range s.fields {
		if s.fields[i].Name != other.fields[i].Name || s.fields[i].Kind != other.fields[i].Kind {
			return false
		}
	}
	return true
}
