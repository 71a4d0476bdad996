// Package memory is an in-process sheets.Mirror, used when no spreadsheet
// is configured and in tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"ecobrain/internal/sheets"
)

type Mirror struct {
	mu   sync.Mutex
	rows map[int64]sheets.Row
}

var _ sheets.Mirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{rows: map[int64]sheets.Row{}}
}

func (m *Mirror) Upsert(_ context.Context, row sheets.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[row.ID] = row
	return nil
}

func (m *Mirror) Remove(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

// Rows returns a snapshot ordered by id.
func (m *Mirror) Rows() []sheets.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sheets.Row, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Get returns the row with id, if mirrored.
func (m *Mirror) Get(id int64) (sheets.Row, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	return r, ok
}
