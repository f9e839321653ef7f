package features

import (
	"fmt"
	"strings"

	"github.com/DrOst98/fc-koeln-dashboard/internal/domain/categories"
	"github.com/DrOst98/fc-koeln-dashboard/internal/domain/similarity"
)

// Canonical model column names. The scorer column name differs between
// model generations and is therefore an option on the builder.
const (
	FieldHeight            = "height"
	FieldTransferAge       = "transferAge"
	FieldIsLoan            = "isLoan"
	FieldWasLoan           = "wasLoan"
	FieldWasJoker          = "was_joker"
	FieldForeignTransfer   = "foreign_transfer"
	FieldPlayedBeforePct   = "percentage_played_before"
	FieldScorerGroup       = "scorer_before_grouped_category"
	FieldCleanSheetsGroup  = "clean_sheets_before_grouped"
	FieldFromTeamMV        = "fromTeam_marketValue"
	FieldToTeamMV          = "toTeam_marketValue"
	FieldMarketValue       = "marketvalue_closest"
	FieldFromLevel         = "from_competition_competition_level"
	FieldToLevel           = "to_competition_competition_level"
	FieldFoot              = "foot"
	FieldMainPosition      = "mainPosition"
	FieldPositionGroup     = "positionGroup"
	FieldFromArea          = "from_competition_competition_area"
	FieldToArea            = "to_competition_competition_area"
	FieldValuePerAge       = "value_per_age"
	FieldValueAgeProduct   = "value_age_product"
	FieldTeamMVRelation    = "team_market_value_relation"
)

// ScorerSentinel replaces the scorer bucket for position groups that do
// not accumulate scorer statistics. Domain rule, applied at inference
// time regardless of any supplied scorer input.
const ScorerSentinel = "defender/goalkeeper"

const millions = 1_000_000

// RawInput carries the user-supplied transfer description. Numeric
// ranges are validated by the caller; the builder validates types and
// categories only.
type RawInput struct {
	Height           float64
	TransferAge      int
	PositionGroup    string
	MainPosition     string
	Foot             string
	MarketValue      float64 // player market value in millions EUR
	PlayedBeforePct  float64
	ScorerGroup      string
	CleanSheetsGroup string
	FromTeamValueM   float64 // squad market value in millions EUR
	ToTeamValueM     float64
	FromArea         string
	FromLevel        int
	ToArea           string
	ToLevel          int
	IsLoan           bool
	WasLoan          bool
	WasJoker         bool
}

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithScorerField overrides the scorer column name for model artifacts
// that declare the older naming.
func WithScorerField(name string) Option {
	return func(b *Builder) {
		if name != "" {
			b.scorerField = name
		}
	}
}

// Builder maps raw inputs into the exact column set the trained model
// expects. Pure; safe for concurrent use.
type Builder struct {
	schema      *Schema
	reg         categories.Mapping
	scorerField string
}

// NewBuilder creates a builder bound to a schema and category registry.
func NewBuilder(schema *Schema, reg categories.Mapping, opts ...Option) *Builder {
	b := &Builder{
		schema:      schema,
		reg:         reg,
		scorerField: FieldScorerGroup,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Schema returns the schema the builder populates.
func (b *Builder) Schema() *Schema { return b.schema }

// Build constructs a complete Vector from raw. Every schema column not
// covered by a raw or derived mapping stays at its zero value. Unknown
// categorical values fail with ErrUnknownCategory; no partial vector is
// produced.
func (b *Builder) Build(raw RawInput) (*Vector, error) {
	scorer := b.scorerValue(raw)
	if err := b.validateCategories(raw, scorer); err != nil {
		return nil, err
	}

	v := &Vector{
		schema: b.schema,
		nums:   make([]float64, b.schema.Len()),
		cats:   make([]string, b.schema.Len()),
	}

	v.setNum(FieldHeight, raw.Height)
	v.setNum(FieldTransferAge, float64(raw.TransferAge))
	v.setNum(FieldIsLoan, boolToFloat(raw.IsLoan))
	v.setNum(FieldWasLoan, boolToFloat(raw.WasLoan))
	v.setNum(FieldWasJoker, boolToFloat(raw.WasJoker))
	v.setNum(FieldForeignTransfer, boolToFloat(raw.FromArea != raw.ToArea))
	v.setNum(FieldPlayedBeforePct, raw.PlayedBeforePct)
	v.setNum(FieldFromTeamMV, raw.FromTeamValueM*millions)
	v.setNum(FieldToTeamMV, raw.ToTeamValueM*millions)
	v.setNum(FieldMarketValue, raw.MarketValue)
	v.setNum(FieldFromLevel, float64(raw.FromLevel))
	v.setNum(FieldToLevel, float64(raw.ToLevel))
	v.setNum(FieldValuePerAge, valuePerAge(raw))
	v.setNum(FieldValueAgeProduct, float64(raw.TransferAge)*raw.MarketValue)
	v.setNum(FieldTeamMVRelation, teamValueRelation(raw))

	v.setCat(b.scorerField, scorer)
	v.setCat(FieldCleanSheetsGroup, raw.CleanSheetsGroup)
	v.setCat(FieldFoot, raw.Foot)
	v.setCat(FieldMainPosition, raw.MainPosition)
	v.setCat(FieldPositionGroup, raw.PositionGroup)
	v.setCat(FieldFromArea, raw.FromArea)
	v.setCat(FieldToArea, raw.ToArea)

	return v, nil
}

// Query shapes the same raw inputs into the narrower similarity query.
// The scorer suppression rule and category validation apply identically.
func (b *Builder) Query(raw RawInput) (similarity.Query, error) {
	scorer := b.scorerValue(raw)
	if err := b.validateCategories(raw, scorer); err != nil {
		return similarity.Query{}, err
	}
	return similarity.Query{
		MainPosition:     raw.MainPosition,
		PositionGroup:    raw.PositionGroup,
		TransferAge:      float64(raw.TransferAge),
		MarketValue:      raw.MarketValue,
		FromTeamValue:    raw.FromTeamValueM * millions,
		ToTeamValue:      raw.ToTeamValueM * millions,
		PlayedBeforePct:  raw.PlayedBeforePct,
		ScorerGroup:      scorer,
		CleanSheetsGroup: raw.CleanSheetsGroup,
		FromArea:         raw.FromArea,
		ToArea:           raw.ToArea,
		FromLevel:        float64(raw.FromLevel),
		ToLevel:          float64(raw.ToLevel),
		TeamValueRel:     teamValueRelation(raw),
	}, nil
}

// scorerValue applies the defender/goalkeeper suppression rule.
func (b *Builder) scorerValue(raw RawInput) string {
	group := strings.ToLower(raw.PositionGroup)
	if group == "defender" || group == "goalkeeper" {
		return ScorerSentinel
	}
	return raw.ScorerGroup
}

// validateCategories checks every registry-typed input strictly. The
// lenient display-label pass-through never applies here.
func (b *Builder) validateCategories(raw RawInput, scorer string) error {
	checks := []struct {
		field string
		value string
	}{
		{FieldPositionGroup, raw.PositionGroup},
		{FieldMainPosition, raw.MainPosition},
		{FieldFoot, raw.Foot},
		{FieldFromArea, raw.FromArea},
		{FieldToArea, raw.ToArea},
		{b.scorerField, scorer},
		{FieldCleanSheetsGroup, raw.CleanSheetsGroup},
	}
	for _, c := range checks {
		cats, known := b.reg.Categories(c.field)
		if !known {
			continue
		}
		if categoryIndex(cats, c.value) < 0 {
			return fmt.Errorf("%w: field %q has no category %q", ErrUnknownCategory, c.field, c.value)
		}
	}
	return nil
}

func (v *Vector) setNum(name string, val float64) {
	i, ok := v.schema.index[name]
	if !ok || v.schema.fields[i].Kind != Numeric {
		return
	}
	v.nums[i] = val
}

func (v *Vector) setCat(name, label string) {
	i, ok := v.schema.index[name]
	if !ok || v.schema.fields[i].Kind != Categorical {
		return
	}
	v.cats[i] = label
}

func valuePerAge(raw RawInput) float64 {
	if raw.TransferAge <= 0 {
		return 0
	}
	return raw.MarketValue / float64(raw.TransferAge)
}

func teamValueRelation(raw RawInput) float64 {
	if raw.FromTeamValueM <= 0 {
		return 0
	}
	return raw.ToTeamValueM / raw.FromTeamValueM
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
