// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/DrOst98/fc-koeln-dashboard/internal/adapters/repository"
	"github.com/DrOst98/fc-koeln-dashboard/internal/domain/cascade"
	"github.com/DrOst98/fc-koeln-dashboard/internal/domain/categories"
	"github.com/DrOst98/fc-koeln-dashboard/internal/domain/features"
	"github.com/DrOst98/fc-koeln-dashboard/internal/domain/similarity"
	"github.com/DrOst98/fc-koeln-dashboard/internal/domain/tiers"
	"github.com/DrOst98/fc-koeln-dashboard/pkg/logger"
	"github.com/DrOst98/fc-koeln-dashboard/pkg/metrics"
)

// Outcome is the full result of one prediction run.
type Outcome struct {
	RawScore        float64
	CalibratedScore float64
	Tier            tiers.Tier
	Similar         []similarity.Match
}

// Stats is a point-in-time service counter snapshot.
type Stats struct {
	Predictions        int64  `json:"predictions"`
	SimilaritySearches int64  `json:"similarity_searches"`
	ReferenceRecords   int    `json:"reference_records"`
	ModelVersion       string `json:"model_version"`
	CalibrationVersion string `json:"calibration_version"`
}

// Meta describes the valid input space for the display shell.
type Meta struct {
	PositionGroups       []string            `json:"position_groups"`
	MainPositionsByGroup map[string][]string `json:"main_positions_by_group"`
	Feet                 []string            `json:"feet"`
	FromAreas            []string            `json:"from_areas"`
	ToAreas              []string            `json:"to_areas"`
	LevelsByArea         map[string][]int    `json:"levels_by_area"`
	ScorerGroups         []string            `json:"scorer_groups"`
	CleanSheetsGroups    []string            `json:"clean_sheets_groups"`
	Tiers                []tiers.Band        `json:"tiers"`
	Importance           map[string]float64  `json:"importance,omitempty"`
}

// Service runs the prediction pipeline over immutable loaded state. All
// operations are synchronous and pure after Start.
type Service struct {
	mu sync.RWMutex

	reg       categories.Mapping
	builder   *features.Builder
	cascade   *cascade.Cascade
	engine    *similarity.Engine
	store     repository.Store
	tierTable *tiers.Table

	// Loaded once at Start, read-only afterwards.
	snapshot   []similarity.Record
	posByGroup map[string][]string

	topN        int
	maxTopN     int
	scorerField string
	started     bool

	predictions atomic.Int64
	searches    atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTopN sets the default similar-transfer count per prediction.
func WithTopN(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithMaxTopN caps the per-request similar-transfer count.
func WithMaxTopN(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxTopN = n
		}
	}
}

// WithTierTable overrides the default tier table.
func WithTierTable(t *tiers.Table) Option {
	return func(s *Service) {
		if t != nil {
			s.tierTable = t
		}
	}
}

// WithScorerField overrides the scorer column name for older model
// artifacts.
func WithScorerField(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.scorerField = name
		}
	}
}

// New constructs a Service over loaded artifacts and a reference store.
func New(reg categories.Mapping, casc *cascade.Cascade, store repository.Store, opts ...Option) *Service {
	s := &Service{
		reg:     reg,
		cascade: casc,
		store:   store,
		topN:    3,
		maxTopN: 25,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.tierTable == nil {
		s.tierTable = tiers.Default()
	}
	var builderOpts []features.Option
	if s.scorerField != "" {
		builderOpts = append(builderOpts, features.WithScorerField(s.scorerField))
	}
	s.builder = features.NewBuilder(casc.Schema(), reg, builderOpts...)
	s.engine = similarity.NewEngine(reg, similarity.WithDefaultTopN(s.topN))
	return s
}

// Start loads the reference snapshot. Must be called once before any
// prediction or search.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.New("service already started")
	}

	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("load reference snapshot: %w", err)
	}
	posByGroup, err := s.store.MainPositionsByGroup(ctx)
	if err != nil {
		return fmt.Errorf("load position groups: %w", err)
	}

	s.snapshot = snapshot
	s.posByGroup = posByGroup
	s.started = true

	metrics.SetReferenceRecords(len(snapshot))
	s.logger.Info(ctx, "reference dataset loaded",
		logger.Int("records", len(snapshot)),
		logger.Int("position_groups", len(posByGroup)),
	)
	return nil
}

// Stop releases the reference store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.started = false
	if err := s.store.Close(); err != nil {
		s.logger.Warn(context.Background(), "closing reference store", logger.Error(err))
	}
}

// Selections arrive in the display vocabulary Meta serves; the model
// and the reference data speak raw category codes.
var (
	mainPositionRaw  = categories.Reverse(categories.MainPositionDisplay)
	positionGroupRaw = categories.Reverse(categories.PositionGroupDisplay)
	footRaw          = categories.Reverse(categories.FootDisplay)
)

// rawSelections translates display labels back to raw categories.
// Unknown labels pass through unchanged; the builder's strict cast is
// the authority on what is valid.
func rawSelections(raw features.RawInput) features.RawInput {
	raw.PositionGroup = categories.MapDisplayToRaw(raw.PositionGroup, positionGroupRaw)
	raw.MainPosition = categories.MapDisplayToRaw(raw.MainPosition, mainPositionRaw)
	raw.Foot = categories.MapDisplayToRaw(raw.Foot, footRaw)
	raw.ScorerGroup = categories.MapDisplayToRaw(raw.ScorerGroup, categories.GroupedLabelRaw)
	raw.CleanSheetsGroup = categories.MapDisplayToRaw(raw.CleanSheetsGroup, categories.GroupedLabelRaw)
	return raw
}

// rawQuery applies the same translation to a similarity query.
func rawQuery(q similarity.Query) similarity.Query {
	q.MainPosition = categories.MapDisplayToRaw(q.MainPosition, mainPositionRaw)
	q.PositionGroup = categories.MapDisplayToRaw(q.PositionGroup, positionGroupRaw)
	q.ScorerGroup = categories.MapDisplayToRaw(q.ScorerGroup, categories.GroupedLabelRaw)
	q.CleanSheetsGroup = categories.MapDisplayToRaw(q.CleanSheetsGroup, categories.GroupedLabelRaw)
	return q
}

// BuildVector maps raw inputs into the model schema.
func (s *Service) BuildVector(raw features.RawInput) (*features.Vector, error) {
	return s.builder.Build(rawSelections(raw))
}

// Predict runs the full pipeline: vector build, cascade, tier
// interpretation and similar-transfer retrieval.
func (s *Service) Predict(ctx context.Context, raw features.RawInput, topN int) (Outcome, error) {
	start := time.Now()
	raw = rawSelections(raw)

	vec, err := s.builder.Build(raw)
	if err != nil {
		metrics.RecordPredictionError(errorKind(err))
		return Outcome{}, err
	}
	res, err := s.cascade.Predict(vec)
	if err != nil {
		metrics.RecordPredictionError(errorKind(err))
		return Outcome{}, err
	}
	tier, err := s.tierTable.Interpret(res.CalibratedScore)
	if err != nil {
		metrics.RecordPredictionError(errorKind(err))
		return Outcome{}, err
	}

	query, err := s.builder.Query(raw)
	if err != nil {
		metrics.RecordPredictionError(errorKind(err))
		return Outcome{}, err
	}
	similar, err := s.FindSimilar(ctx, query, topN)
	if err != nil {
		metrics.RecordPredictionError(errorKind(err))
		return Outcome{}, err
	}

	s.predictions.Add(1)
	durationMs := float64(time.Since(start).Milliseconds())
	metrics.RecordPrediction(durationMs, res.CalibratedScore)
	s.logger.Debug(ctx, "prediction served",
		logger.Float64("raw_score", res.RawScore),
		logger.Float64("calibrated_score", res.CalibratedScore),
		logger.String("tier", tier.Label),
		logger.Int("similar", len(similar)),
	)

	return Outcome{
		RawScore:        res.RawScore,
		CalibratedScore: res.CalibratedScore,
		Tier:            tier,
		Similar:         similar,
	}, nil
}

// FindSimilar searches the loaded snapshot for comparable transfers.
func (s *Service) FindSimilar(ctx context.Context, q similarity.Query, topN int) ([]similarity.Match, error) {
	s.mu.RLock()
	snapshot := s.snapshot
	started := s.started
	s.mu.RUnlock()
	if !started {
		return nil, errors.New("service not started")
	}
	q = rawQuery(q)

	if topN <= 0 {
		topN = s.topN
	}
	if topN > s.maxTopN {
		topN = s.maxTopN
	}

	start := time.Now()
	matches, err := s.engine.FindSimilar(ctx, q, snapshot, topN)
	if err != nil {
		return nil, err
	}
	s.searches.Add(1)
	metrics.RecordSimilarityQuery(float64(time.Since(start).Milliseconds()), len(matches))
	return matches, nil
}

// Interpret maps a score to its tier.
func (s *Service) Interpret(score float64) (tiers.Tier, error) {
	return s.tierTable.Interpret(score)
}

// Meta describes the valid input space for the display shell: category
// lists display-mapped and sorted the way the original dashboard
// presented them.
func (s *Service) Meta(_ context.Context) Meta {
	s.mu.RLock()
	posByGroup := s.posByGroup
	s.mu.RUnlock()

	meta := Meta{
		MainPositionsByGroup: displayPositionsByGroup(posByGroup),
		LevelsByArea:         make(map[string][]int),
		Tiers:                s.tierTable.Bands(),
		Importance:           s.cascade.Importance(),
	}

	if groups, ok := s.reg.Categories(features.FieldPositionGroup); ok {
		meta.PositionGroups = displayLabels(dropLabel(groups, "other"), categories.PositionGroupDisplay)
	}
	if feet, ok := s.reg.Categories(features.FieldFoot); ok {
		meta.Feet = displayLabels(dropLabel(feet, "unknown"), categories.FootDisplay)
	}
	if areas, ok := s.reg.Categories(features.FieldFromArea); ok {
		meta.FromAreas = areas
		for _, a := range areas {
			meta.LevelsByArea[a] = categories.LevelsFor(a)
		}
	}
	if areas, ok := s.reg.Categories(features.FieldToArea); ok {
		meta.ToAreas = areas
		for _, a := range areas {
			meta.LevelsByArea[a] = categories.LevelsFor(a)
		}
	}
	if scorer, ok := s.reg.Categories(features.FieldScorerGroup); ok {
		meta.ScorerGroups = groupedDisplay(scorer, features.FieldScorerGroup, features.ScorerSentinel)
	}
	if cs, ok := s.reg.Categories(features.FieldCleanSheetsGroup); ok {
		meta.CleanSheetsGroups = groupedDisplay(cs, features.FieldCleanSheetsGroup, "")
	}
	return meta
}

// groupedDisplay widens the "other" bucket to its display label, drops
// the sentinel, and sorts by lower bound.
func groupedDisplay(cats []string, field, sentinel string) []string {
	out := make([]string, 0, len(cats))
	for _, c := range cats {
		if sentinel != "" && c == sentinel {
			continue
		}
		if c == "other" {
			if widened, ok := categories.GroupedLabelDisplay[field]; ok {
				c = widened
			}
		}
		out = append(out, c)
	}
	return categories.SortGroupedLabels(out)
}

// displayLabels maps raw codes to their display labels, passing codes
// without an entry through unchanged.
func displayLabels(cats []string, table map[string]string) []string {
	out := make([]string, len(cats))
	for i, c := range cats {
		if label, ok := table[c]; ok {
			out[i] = label
			continue
		}
		out[i] = c
	}
	return out
}

// displayPositionsByGroup rewrites the observed group map into the
// display vocabulary, re-sorted after mapping.
func displayPositionsByGroup(posByGroup map[string][]string) map[string][]string {
	out := make(map[string][]string, len(posByGroup))
	for group, positions := range posByGroup {
		labels := displayLabels(positions, categories.MainPositionDisplay)
		sort.Strings(labels)
		if label, ok := categories.PositionGroupDisplay[group]; ok {
			group = label
		}
		out[group] = labels
	}
	return out
}

func dropLabel(cats []string, label string) []string {
	out := make([]string, 0, len(cats))
	for _, c := range cats {
		if c != label {
			out = append(out, c)
		}
	}
	return out
}

// Stats returns current counters.
func (s *Service) Stats() Stats {
	s.mu.RLock()
	records := len(s.snapshot)
	s.mu.RUnlock()
	return Stats{
		Predictions:        s.predictions.Load(),
		SimilaritySearches: s.searches.Load(),
		ReferenceRecords:   records,
		ModelVersion:       s.cascade.Version(),
		CalibrationVersion: s.cascade.CalibrationVersion(),
	}
}

// errorKind labels an error for metrics without leaking messages.
func errorKind(err error) string {
	switch {
	case errors.Is(err, features.ErrUnknownCategory):
		return "unknown_category"
	case errors.Is(err, cascade.ErrInference):
		return "model_inference"
	case errors.Is(err, similarity.ErrDegenerateQuery):
		return "degenerate_query"
	case errors.Is(err, tiers.ErrInvalidScore):
		return "invalid_score"
	default:
		return "internal"
	}
}
