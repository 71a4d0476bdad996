package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"ecobrain/internal/core"
	"ecobrain/internal/sheets"
)

// fakeSheet serves the handful of Sheets v4 endpoints the client uses,
// backed by one in-memory tab.
type fakeSheet struct {
	mu   sync.Mutex
	rows [][]any
}

func (f *fakeSheet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	w.Header().Set("Content-Type", "application/json")

	switch {
	case strings.HasSuffix(path, ":batchUpdate"):
		var req gsheet.BatchUpdateSpreadsheetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for _, rq := range req.Requests {
			if rq.DeleteDimension == nil || rq.DeleteDimension.Range.SheetId != 7 {
				http.Error(w, "bad request", http.StatusBadRequest)
				return
			}
			i := rq.DeleteDimension.Range.StartIndex
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
		}
		_, _ = w.Write([]byte(`{}`))

	case strings.HasSuffix(path, ":append"):
		var vr gsheet.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.rows = append(f.rows, vr.Values...)
		_, _ = w.Write([]byte(`{}`))

	case strings.Contains(path, "/values/") && r.Method == http.MethodPut:
		var vr gsheet.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rng := path[strings.Index(path, "!A")+2:]
		n, err := strconv.Atoi(rng[:strings.Index(rng, ":")])
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for len(f.rows) < n {
			f.rows = append(f.rows, []any{})
		}
		f.rows[n-1] = vr.Values[0]
		_, _ = w.Write([]byte(`{}`))

	case strings.Contains(path, "/values/"):
		col := make([][]any, len(f.rows))
		for i, row := range f.rows {
			if len(row) > 0 {
				col[i] = []any{row[0]}
			} else {
				col[i] = []any{}
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"values": col})

	default:
		_, _ = w.Write([]byte(`{"sheets":[{"properties":{"sheetId":3,"title":"Other"}},{"properties":{"sheetId":7,"title":"Transactions"}}]}`))
	}
}

func (f *fakeSheet) ids() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.rows))
	for i, row := range f.rows {
		if len(row) > 0 {
			out[i] = toString(row[0])
		}
	}
	return out
}

func toString(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	}
	return ""
}

func newTestClient(t *testing.T) (*Client, *fakeSheet) {
	t.Helper()
	fake := &fakeSheet{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return newWithService(svc, "spreadsheet-1", "Transactions"), fake
}

func row(id int64, desc string) sheets.Row {
	return sheets.NewRow(core.Transaction{
		ID:          id,
		UserID:      1,
		CategoryID:  2,
		Description: desc,
		Amount:      core.Money{Cents: 1999},
		Date:        core.NewDate(2025, 6, 1),
		Type:        core.TypeExpense,
	}, "Food")
}

func TestClientMirrorsRows(t *testing.T) {
	ctx := context.Background()
	c, fake := newTestClient(t)

	require.NoError(t, c.EnsureHeader(ctx))
	require.NoError(t, c.EnsureHeader(ctx))
	assert.Equal(t, []string{"ID"}, fake.ids())

	require.NoError(t, c.Upsert(ctx, row(5, "Lunch")))
	require.NoError(t, c.Upsert(ctx, row(9, "Dinner")))
	assert.Equal(t, []string{"ID", "5", "9"}, fake.ids())

	require.NoError(t, c.Upsert(ctx, row(5, "Brunch")))
	assert.Equal(t, []string{"ID", "5", "9"}, fake.ids())
	assert.Equal(t, "Brunch", fake.rows[1][5])
	assert.Equal(t, "19.99", fake.rows[1][6])

	require.NoError(t, c.Remove(ctx, 5))
	assert.Equal(t, []string{"ID", "9"}, fake.ids())

	require.NoError(t, c.Remove(ctx, 404))
	assert.Equal(t, []string{"ID", "9"}, fake.ids())
}

func TestNewRequiresConfiguration(t *testing.T) {
	_, err := New(context.Background(), "", "Transactions", []byte(`{}`))
	assert.Error(t, err)
	_, err = New(context.Background(), "id", "Transactions", nil)
	assert.Error(t, err)
}
