// Package cascade runs the two-stage prediction: a gradient boosted
// tree ensemble produces a raw score, then a learned calibration curve
// corrects its systematic bias. Both stages are pure functions over
// fixed, versioned artifacts.
package cascade

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/DrOst98/fc-koeln-dashboard/internal/domain/categories"
	"github.com/DrOst98/fc-koeln-dashboard/internal/domain/features"
)

// leafMarker flags a leaf node in the artifact's flat node encoding.
const leafMarker = -1

// ensembleArtifact is the on-disk JSON export of the trained booster.
type ensembleArtifact struct {
	Version    string             `json:"version"`
	BaseScore  float64            `json:"base_score"`
	Features   []artifactFeature  `json:"features"`
	Trees      []artifactTree     `json:"trees"`
	Importance map[string]float64 `json:"importance,omitempty"`
}

type artifactFeature struct {
	Name string `json:"name"`
	Kind string `json:"kind"` // "numeric" or "categorical"
}

type artifactTree struct {
	Nodes []artifactNode `json:"nodes"`
}

// artifactNode is one split or leaf. Children always point forward in
// the node slice.
type artifactNode struct {
	Feature   int     `json:"feature"` // -1 for leaves
	Threshold float64 `json:"threshold"`
	Yes       int     `json:"yes"`
	No        int     `json:"no"`
	Missing   int     `json:"missing"`
	Leaf      float64 `json:"leaf"`
}

// Ensemble is the loaded base regressor: an additive collection of
// regression trees over the declared input schema.
type Ensemble struct {
	version    string
	baseScore  float64
	schema     *features.Schema
	trees      []artifactTree
	importance map[string]float64
}

// LoadEnsemble reads and validates a base-regressor artifact, resolving
// categorical feature sets against the registry.
func LoadEnsemble(path string, reg categories.Mapping) (*Ensemble, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrArtifact, path, err)
	}
	var art ensembleArtifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrArtifact, path, err)
	}

	fields := make([]features.Field, len(art.Features))
	for i, f := range art.Features {
		switch f.Kind {
		case "numeric":
			fields[i] = features.Field{Name: f.Name, Kind: features.Numeric}
		case "categorical":
			fields[i] = features.Field{Name: f.Name, Kind: features.Categorical}
		default:
			return nil, fmt.Errorf("%w: %s: feature %q has unknown kind %q", ErrArtifact, path, f.Name, f.Kind)
		}
	}
	schema, err := features.NewSchema(fields, reg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrArtifact, path, err)
	}

	if len(art.Trees) == 0 {
		return nil, fmt.Errorf("%w: %s: no trees", ErrArtifact, path)
	}
	for ti, tree := range art.Trees {
		if err := validateTree(tree, schema.Len()); err != nil {
			return nil, fmt.Errorf("%w: %s: tree %d: %w", ErrArtifact, path, ti, err)
		}
	}

	return &Ensemble{
		version:    art.Version,
		baseScore:  art.BaseScore,
		schema:     schema,
		trees:      art.Trees,
		importance: art.Importance,
	}, nil
}

func validateTree(tree artifactTree, featureCount int) error {
	if len(tree.Nodes) == 0 {
		return fmt.Errorf("empty tree")
	}
	for i, n := range tree.Nodes {
		if n.Feature == leafMarker {
			continue
		}
		if n.Feature < 0 || n.Feature >= featureCount {
			return fmt.Errorf("node %d references feature %d outside schema", i, n.Feature)
		}
		// Forward-only children keep traversal acyclic.
		for _, child := range []int{n.Yes, n.No, n.Missing} {
			if child <= i || child >= len(tree.Nodes) {
				return fmt.Errorf("node %d has invalid child %d", i, child)
			}
		}
	}
	return nil
}

// Schema returns the model's declared input schema.
func (e *Ensemble) Schema() *features.Schema { return e.schema }

// Version returns the artifact version string.
func (e *Ensemble) Version() string { return e.version }

// Importance returns per-field importance scores for diagnostic
// display, or nil when the artifact carries none.
func (e *Ensemble) Importance() map[string]float64 { return e.importance }

// score sums the leaf values of every tree over the encoded row.
func (e *Ensemble) score(row []float64) float64 {
	sum := e.baseScore
	for _, tree := range e.trees {
		sum += evalTree(tree, row)
	}
	return sum
}

func evalTree(tree artifactTree, row []float64) float64 {
	i := 0
	for {
		n := tree.Nodes[i]
		if n.Feature == leafMarker {
			return n.Leaf
		}
		v := row[n.Feature]
		switch {
		case math.IsNaN(v):
			i = n.Missing
		case v < n.Threshold:
			i = n.Yes
		default:
			i = n.No
		}
	}
}
