package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"ecobrain/internal/auth"
	"ecobrain/internal/services"
	"ecobrain/internal/storage"
)

func fixedClock() time.Time { return june15 }

type testAPI struct {
	t   *testing.T
	srv *Server
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	tokens := auth.NewTokens(strings.Repeat("s", 32), time.Hour)
	srv := NewServer(":0", Deps{
		Ledger:    services.NewLedgerService(repo, nil).WithClock(fixedClock),
		Insights:  services.NewInsightService(repo, nil).WithClock(fixedClock),
		Auth:      services.NewAuthService(repo, auth.NewHasher(4), tokens),
		Tokens:    tokens,
		Users:     repo,
		RateLimit: 10000,
		Now:       fixedClock,
	})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return &testAPI{t: t, srv: srv}
}

func (a *testAPI) request(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

type session struct {
	Token string `json:"token"`
	User  struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
}

type txBody struct {
	ID          int64   `json:"id"`
	UserID      int64   `json:"userId"`
	CategoryID  int64   `json:"categoryId"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Type        string  `json:"type"`
}

type errBody struct {
	Message string `json:"message"`
	Errors  []struct {
		Field string `json:"field"`
	} `json:"errors"`
}

// register signs a user up and returns the token with the ids of the seeded
// Food and Income categories.
func (a *testAPI) register(username string) (token string, food, income int64) {
	a.t.Helper()
	rr := a.request(http.MethodPost, "/api/register", "", map[string]string{
		"username":  username,
		"password":  "secret123",
		"email":     username + "@example.com",
		"firstName": "Test",
	})
	require.Equal(a.t, http.StatusCreated, rr.Code, rr.Body.String())
	token = decode[session](a.t, rr).Token

	rr = a.request(http.MethodGet, "/api/categories", token, nil)
	require.Equal(a.t, http.StatusOK, rr.Code)
	for _, c := range decode[[]struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}](a.t, rr) {
		switch c.Name {
		case "Food":
			food = c.ID
		case "Income":
			income = c.ID
		}
	}
	require.NotZero(a.t, food)
	require.NotZero(a.t, income)
	return token, food, income
}

func (a *testAPI) createTx(token string, categoryID int64, txType string, amount any, date string) txBody {
	a.t.Helper()
	rr := a.request(http.MethodPost, "/api/transactions", token, map[string]any{
		"categoryId":  categoryID,
		"description": "Entry " + date,
		"amount":      amount,
		"date":        date,
		"type":        txType,
	})
	require.Equal(a.t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[txBody](a.t, rr)
}

func TestOperationalEndpoints(t *testing.T) {
	api := newTestAPI(t)

	rr := api.request(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	rr = api.request(http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"database":"ok"`)

	rr = api.request(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "# TYPE ecobrain_http_requests_total counter")
	assert.Contains(t, rr.Body.String(), "ecobrain_rate_limit_active_clients")

	rr = api.request(http.MethodGet, "/api/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
}

func TestAuthFlow(t *testing.T) {
	api := newTestAPI(t)
	api.register("alice")

	rr := api.request(http.MethodPost, "/api/register", "", map[string]string{
		"username": "alice", "password": "secret123", "email": "other@example.com", "firstName": "Al",
	})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = api.request(http.MethodPost, "/api/register", "", map[string]string{"username": "x"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.NotEmpty(t, decode[errBody](t, rr).Errors)

	rr = api.request(http.MethodPost, "/api/login", "", map[string]string{"username": "alice", "password": "wrong-one"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = api.request(http.MethodPost, "/api/login", "", map[string]string{"username": "alice", "password": "secret123"})
	require.Equal(t, http.StatusOK, rr.Code)
	sess := decode[session](t, rr)
	assert.Equal(t, "alice", sess.User.Username)
	assert.NotContains(t, rr.Body.String(), "password")

	var cookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.CookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, sess.Token, cookie.Value)

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	api.srv.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)

	rr = api.request(http.MethodGet, "/api/user", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	rr = api.request(http.MethodGet, "/api/user", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = api.request(http.MethodPost, "/api/logout", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())
	assert.Contains(t, rr.Header().Get("Set-Cookie"), "Max-Age=0")

	assert.Equal(t, 1, api.srv.authMW.Cache().Size())
	rr = api.request(http.MethodPost, "/api/logout", sess.Token, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, api.srv.authMW.Cache().Size())
}

func TestTransactionLifecycle(t *testing.T) {
	api := newTestAPI(t)
	token, food, _ := api.register("alice")

	created := api.createTx(token, food, "expense", "12.345", "2025-06-10")
	assert.Equal(t, 12.35, created.Amount)

	path := fmt.Sprintf("/api/transactions/%d", created.ID)
	rr := api.request(http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, created, decode[txBody](t, rr))

	rr = api.request(http.MethodPut, path, token, map[string]string{"description": "Dinner out"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decode[txBody](t, rr)
	assert.Equal(t, "Dinner out", updated.Description)
	assert.Equal(t, created.Amount, updated.Amount)
	assert.Equal(t, created.Date, updated.Date)

	rr = api.request(http.MethodGet, "/api/transactions/recent", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]txBody](t, rr), 1)

	rr = api.request(http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())

	rr = api.request(http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = api.request(http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCrossUserAccessIsForbidden(t *testing.T) {
	api := newTestAPI(t)
	alice, food, _ := api.register("alice")
	bob, _, _ := api.register("bobby")

	tx := api.createTx(alice, food, "expense", 40, "2025-06-01")
	path := fmt.Sprintf("/api/transactions/%d", tx.ID)

	assert.Equal(t, http.StatusForbidden, api.request(http.MethodGet, path, bob, nil).Code)
	assert.Equal(t, http.StatusForbidden, api.request(http.MethodPut, path, bob, map[string]any{"amount": 1}).Code)
	assert.Equal(t, http.StatusForbidden, api.request(http.MethodDelete, path, bob, nil).Code)
	assert.Equal(t, http.StatusForbidden,
		api.request(http.MethodPatch, fmt.Sprintf("/api/categories/%d", food), bob, map[string]string{"name": "Mine"}).Code)

	rr := api.request(http.MethodGet, path, alice, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, tx, decode[txBody](t, rr))

	// bob cannot file a transaction under alice's category either
	rr = api.request(http.MethodPost, "/api/transactions", bob, map[string]any{
		"categoryId": food, "description": "Sneaky", "amount": 5, "date": "2025-06-02", "type": "expense",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "categoryId", decode[errBody](t, rr).Errors[0].Field)
}

func TestValidationFailures(t *testing.T) {
	api := newTestAPI(t)
	token, food, _ := api.register("alice")

	rr := api.request(http.MethodPost, "/api/transactions", token, map[string]any{
		"categoryId": food, "description": "Zero", "amount": 0, "date": "2025-06-02", "type": "expense",
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	body := decode[errBody](t, rr)
	assert.Equal(t, "Validation failed", body.Message)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "amount", body.Errors[0].Field)

	rr = api.request(http.MethodPost, "/api/transactions", token, `{"description":`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = api.request(http.MethodPost, "/api/goals", token, map[string]any{"name": "Trip", "target": -5, "deadline": "2026-01-01"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = api.request(http.MethodGet, "/api/reports?reportType=taxes", token, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "reportType", decode[errBody](t, rr).Errors[0].Field)

	rr = api.request(http.MethodGet, "/api/transactions/export?format=pdf", token, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = api.request(http.MethodPost, "/api/transactions", token, map[string]any{
		"categoryId": food, "description": "Typo", "amount": "12.5x", "date": "2025-06-02", "type": "expense",
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "amount", decode[errBody](t, rr).Errors[0].Field)

	rr = api.request(http.MethodPost, "/api/transactions", token, map[string]any{
		"categoryId": food, "description": "Typo", "amount": 5, "date": "02/06/2025", "type": "expense",
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "date", decode[errBody](t, rr).Errors[0].Field)

	rr = api.request(http.MethodGet, "/api/transactions?page=1844674407370955163&limit=5", token, nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "page", decode[errBody](t, rr).Errors[0].Field)
}

func TestListTransactionsPagination(t *testing.T) {
	api := newTestAPI(t)
	token, food, income := api.register("alice")

	for i := 1; i <= 12; i++ {
		api.createTx(token, food, "expense", i, fmt.Sprintf("2025-06-%02d", i))
	}
	api.createTx(token, income, "income", 500, "2025-06-01")

	rr := api.request(http.MethodGet, "/api/transactions?page=2&limit=5&type=expense", token, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	page := decode[struct {
		Transactions []txBody `json:"transactions"`
		Pagination   struct {
			Total       int `json:"total"`
			TotalPages  int `json:"totalPages"`
			CurrentPage int `json:"currentPage"`
			PageSize    int `json:"pageSize"`
		} `json:"pagination"`
	}](t, rr)
	assert.Len(t, page.Transactions, 5)
	assert.Equal(t, 12, page.Pagination.Total)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.Equal(t, 2, page.Pagination.CurrentPage)
	assert.Equal(t, 5, page.Pagination.PageSize)
	for _, tx := range page.Transactions {
		assert.Equal(t, "expense", tx.Type)
	}
}

func TestDashboardOverview(t *testing.T) {
	api := newTestAPI(t)
	token, food, income := api.register("alice")
	api.createTx(token, income, "income", 1000, "2025-06-01")
	api.createTx(token, food, "expense", 400, "2025-06-05")

	rr := api.request(http.MethodGet, "/api/dashboard/overview", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	ov := decode[map[string]any](t, rr)
	assert.Equal(t, 1000.0, ov["monthlyIncome"])
	assert.Equal(t, 400.0, ov["monthlyExpenses"])
	assert.Equal(t, 600.0, ov["monthlySavings"])
	assert.Equal(t, 0.0, ov["budgetPercentage"])
	assert.Equal(t, "2025-06-01", ov["lastIncomeDate"])

	rr = api.request(http.MethodGet, "/api/dashboard/spending-chart?timeRange=3months", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	chart := decode[struct {
		ChartData []map[string]any `json:"chartData"`
	}](t, rr)
	require.Len(t, chart.ChartData, 3)
	assert.Equal(t, "Jun", chart.ChartData[2]["month"])

	rr = api.request(http.MethodGet, "/api/ai/suggestions", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"suggestions"`)
}

func TestBudgetsAndCategoryConflict(t *testing.T) {
	api := newTestAPI(t)
	token, food, _ := api.register("alice")
	api.createTx(token, food, "expense", 150, "2025-06-03")

	rr := api.request(http.MethodPost, "/api/budget/categories", token, map[string]any{
		"categoryId": food, "amount": 300, "month": 6, "year": 2025,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = api.request(http.MethodGet, "/api/budget/categories?month=6&year=2025", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	statuses := decode[[]map[string]any](t, rr)
	require.Len(t, statuses, 1)
	assert.Equal(t, "Food", statuses[0]["categoryName"])
	assert.Equal(t, 150.0, statuses[0]["spent"])
	assert.Equal(t, 50.0, statuses[0]["percentage"])

	rr = api.request(http.MethodDelete, fmt.Sprintf("/api/categories/%d", food), token, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestExportTransactions(t *testing.T) {
	api := newTestAPI(t)
	token, food, _ := api.register("alice")
	api.createTx(token, food, "expense", "9.99", "2025-06-03")

	rr := api.request(http.MethodGet, "/api/transactions/export", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, csvMIME, rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "transactions_20250615.csv")
	body := rr.Body.String()
	assert.True(t, strings.HasPrefix(body, "\xEF\xBB\xBF"))
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(body, "\xEF\xBB\xBF")), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Date,Type,Category,Description,Amount,Recurring,Notes", lines[0])
	assert.Equal(t, "2025-06-03,expense,Food,Entry 2025-06-03,9.99,false,", lines[1])

	rr = api.request(http.MethodGet, "/api/transactions/export?format=xlsx", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, xlsxMIME, rr.Header().Get("Content-Type"))
	book, err := excelize.OpenReader(bytes.NewReader(rr.Body.Bytes()))
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Food", rows[1][2])
}
