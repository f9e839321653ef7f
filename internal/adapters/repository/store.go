// Package repository loads the historical transfer reference dataset.
//
// The dataset is read once at process start into an immutable snapshot;
// no write path exists.
package repository

import (
	"context"
	"sort"

	"github.com/DrOst98/fc-koeln-dashboard/internal/domain/similarity"
)

// Store exposes the reference dataset.
type Store interface {
	// Snapshot returns every reference record.
	Snapshot(ctx context.Context) ([]similarity.Record, error)

	// MainPositionsByGroup returns the distinct main positions observed
	// per position group, alphabetically. Drives the dependent
	// position dropdowns in the display shell.
	MainPositionsByGroup(ctx context.Context) (map[string][]string, error)

	// Close releases the backing resource.
	Close() error
}

// groupPositions derives the position-group map from records. Shared by
// the SQLite and in-memory stores.
func groupPositions(records []similarity.Record) map[string][]string {
	seen := make(map[string]map[string]struct{})
	for _, r := range records {
		if r.PositionGroup == "" || r.MainPosition == "" {
			continue
		}
		if seen[r.PositionGroup] == nil {
			seen[r.PositionGroup] = make(map[string]struct{})
		}
		seen[r.PositionGroup][r.MainPosition] = struct{}{}
	}
	out := make(map[string][]string, len(seen))
	for group, positions := range seen {
		list := make([]string, 0, len(positions))
		for p := range positions {
			list = append(list, p)
		}
		sort.Strings(list)
		out[group] = list
	}
	return out
}

// MemoryStore serves records from memory. Used by tests and by callers
// that inject fixture data.
type MemoryStore struct {
	records []similarity.Record
}

// NewMemoryStore creates a store over the given records.
func NewMemoryStore(records []similarity.Record) *MemoryStore {
	return &MemoryStore{records: records}
}

// Snapshot returns a copy of the held records.
func (s *MemoryStore) Snapshot(_ context.Context) ([]similarity.Record, error) {
	out := make([]similarity.Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

// MainPositionsByGroup derives the group map from the held records.
func (s *MemoryStore) MainPositionsByGroup(_ context.Context) (map[string][]string, error) {
	return groupPositions(s.records), nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }
