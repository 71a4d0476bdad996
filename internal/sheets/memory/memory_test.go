package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecobrain/internal/core"
	"ecobrain/internal/sheets"
)

func TestMirrorUpsertReplacesAndRemove(t *testing.T) {
	ctx := context.Background()
	m := New()

	tx := core.Transaction{ID: 2, UserID: 1, CategoryID: 5, Description: "Rent", Amount: core.Money{Cents: 90000}, Date: core.NewDate(2025, 6, 1), Type: core.TypeExpense}
	require.NoError(t, m.Upsert(ctx, sheets.NewRow(tx, "Housing")))
	require.NoError(t, m.Upsert(ctx, sheets.NewRow(core.Transaction{ID: 1, UserID: 1}, "")))

	tx.Description = "Rent June"
	require.NoError(t, m.Upsert(ctx, sheets.NewRow(tx, "Housing")))

	rows := m.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0].ID)
	assert.Equal(t, "#0", rows[0].Category)
	assert.Equal(t, "Rent June", rows[1].Description)

	require.NoError(t, m.Remove(ctx, 2))
	require.NoError(t, m.Remove(ctx, 42))
	_, ok := m.Get(2)
	assert.False(t, ok)
}
