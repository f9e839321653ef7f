package similarity

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/DrOst98/fc-koeln-dashboard/internal/domain/categories"
)

// Engine runs similarity searches against a reference dataset. Pure and
// read-only over loaded state; safe for concurrent use.
type Engine struct {
	reg         categories.Mapping
	columns     []Column
	defaultTopN int
}

// NewEngine creates an engine bound to the category registry.
func NewEngine(reg categories.Mapping, opts ...Option) *Engine {
	e := &Engine{
		reg:         reg,
		columns:     defaultColumns,
		defaultTopN: 3,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// block is one encoded column span: a single dimension for numeric
// columns, one dimension per declared category for categorical ones.
type block struct {
	col        Column
	categories []string // nil for numeric columns
}

// layout resolves the encoded feature space. The space is fixed by the
// registry's full declared category sets, so two searches always compare
// over the same dimensions regardless of which categories survive the
// hard filter.
func (e *Engine) layout() ([]block, int) {
	blocks := make([]block, 0, len(e.columns))
	width := 0
	for _, col := range e.columns {
		if categoricalColumns[col] {
			cats, ok := e.reg.Categories(string(col))
			if !ok {
				continue
			}
			blocks = append(blocks, block{col: col, categories: cats})
			width += len(cats)
			continue
		}
		blocks = append(blocks, block{col: col})
		width++
	}
	return blocks, width
}

// FindSimilar returns up to topN reference records closest to the query,
// ascending by standardized Euclidean distance.
//
// Records missing any participating or identity value are dropped, the
// remainder is hard-filtered to the query's main position and from/to
// competition levels, and deduplicated to each player's most recent
// season. An empty result after filtering is a valid outcome, not an
// error.
func (e *Engine) FindSimilar(ctx context.Context, q Query, reference []Record, topN int) ([]Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("similarity search cancelled: %w", err)
	}
	if topN <= 0 {
		topN = e.defaultTopN
	}

	blocks, width := e.layout()
	if width == 0 {
		return nil, fmt.Errorf("%w: no participating columns", ErrDegenerateQuery)
	}

	candidates := e.filter(q, reference)
	candidates = dedupeNewest(candidates)
	if len(candidates) == 0 {
		return []Match{}, nil
	}

	rows := make([][]float64, len(candidates))
	for i, r := range candidates {
		rows[i] = encodeRecord(r, blocks, width)
	}
	queryRow := encodeQuery(q, blocks, width)

	standardize(rows, queryRow)

	matches := make([]Match, len(candidates))
	for i, r := range candidates {
		matches[i] = Match{Record: r, Distance: euclidean(rows[i], queryRow)}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	if len(matches) > topN {
		matches = matches[:topN]
	}
	return matches, nil
}

// filter drops incomplete records and enforces domain comparability: a
// match across different competition tiers or positions is never
// comparable, whatever its numeric closeness.
func (e *Engine) filter(q Query, reference []Record) []Record {
	out := make([]Record, 0, len(reference))
	for _, r := range reference {
		if !complete(r, e.columns) {
			continue
		}
		if r.MainPosition != q.MainPosition ||
			r.FromLevel != q.FromLevel ||
			r.ToLevel != q.ToLevel {
			continue
		}
		out = append(out, r)
	}
	return out
}

// dedupeNewest keeps one record per player: the most recent season.
func dedupeNewest(records []Record) []Record {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Season > sorted[j].Season
	})
	seen := make(map[string]struct{}, len(sorted))
	out := sorted[:0]
	for _, r := range sorted {
		if _, dup := seen[r.PlayerID]; dup {
			continue
		}
		seen[r.PlayerID] = struct{}{}
		out = append(out, r)
	}
	return out
}

func encodeRecord(r Record, blocks []block, width int) []float64 {
	row := make([]float64, 0, width)
	for _, b := range blocks {
		num, cat := recordValue(r, b.col)
		row = appendEncoded(row, b, num, cat)
	}
	return row
}

func encodeQuery(q Query, blocks []block, width int) []float64 {
	row := make([]float64, 0, width)
	for _, b := range blocks {
		num, cat := queryValue(q, b.col)
		row = appendEncoded(row, b, num, cat)
	}
	return row
}

// appendEncoded one-hot encodes categorical blocks over the full
// declared category set; a value outside the set yields an all-zero
// block on its side.
func appendEncoded(row []float64, b block, num float64, cat string) []float64 {
	if b.categories == nil {
		return append(row, num)
	}
	for _, c := range b.categories {
		if c == cat {
			row = append(row, 1)
		} else {
			row = append(row, 0)
		}
	}
	return row
}

// standardize fits zero-mean unit-variance scaling on the reference rows
// and applies the same transform to both sides in place. Zero-variance
// columns scale by 1, matching the fit-on-reference convention.
func standardize(rows [][]float64, queryRow []float64) {
	if len(rows) == 0 {
		return
	}
	width := len(queryRow)
	n := float64(len(rows))
	mean := make([]float64, width)
	for _, row := range rows {
		for j, v := range row {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= n
	}
	std := make([]float64, width)
	for _, row := range rows {
		for j, v := range row {
			d := v - mean[j]
			std[j] += d * d
		}
	}
	for j := range std {
		std[j] = math.Sqrt(std[j] / n)
		if std[j] == 0 {
			std[j] = 1
		}
	}
	for _, row := range rows {
		for j := range row {
			row[j] = (row[j] - mean[j]) / std[j]
		}
	}
	for j := range queryRow {
		queryRow[j] = (queryRow[j] - mean[j]) / std[j]
	}
}

func euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
