package sheets

import (
	"context"
	"strconv"

	"ecobrain/internal/core"
)

// Mirror keeps a copy of every transaction outside the database, one row
// per transaction keyed by its id.
type Mirror interface {
	// Upsert writes row, replacing any row with the same id.
	Upsert(ctx context.Context, row Row) error
	// Remove deletes the row with id. A missing row is not an error.
	Remove(ctx context.Context, id int64) error
}

// Header is the first row of a mirror sheet, in column order.
var Header = []any{"ID", "User", "Date", "Type", "Category", "Description", "Amount", "Notes"}

// Row is a flattened transaction as written to a mirror.
type Row struct {
	ID          int64
	UserID      int64
	Date        string
	Type        string
	Category    string
	Description string
	Amount      core.Money
	Notes       string
}

// NewRow flattens tx. category is the display name; empty falls back to the id.
func NewRow(tx core.Transaction, category string) Row {
	if category == "" {
		category = "#" + strconv.FormatInt(tx.CategoryID, 10)
	}
	return Row{
		ID:          tx.ID,
		UserID:      tx.UserID,
		Date:        tx.Date.String(),
		Type:        string(tx.Type),
		Category:    category,
		Description: tx.Description,
		Amount:      tx.Amount,
		Notes:       tx.Notes,
	}
}

// Values returns the cells of r in Header order. The amount is a plain
// decimal string so spreadsheets parse it as a number in any locale.
func (r Row) Values() []any {
	return []any{r.ID, r.UserID, r.Date, r.Type, r.Category, r.Description, r.Amount.String(), r.Notes}
}
