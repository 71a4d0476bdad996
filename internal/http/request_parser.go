package http

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"ecobrain/internal/auth"
	"ecobrain/internal/core"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
	maxPageSize     = 100
	defaultRecent   = 5
	maxRecent       = 50
)

// decodeJSON reads at most maxBodyBytes of JSON into dst. Every failure is
// reported as a validation error so it maps to 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var (
			tooLarge *http.MaxBytesError
			typeErr  *json.UnmarshalTypeError
		)
		switch {
		case errors.As(err, &tooLarge):
			return core.NewValidationError("body", "must be at most 1 MiB")
		case errors.Is(err, io.EOF):
			return core.NewValidationError("body", "is required")
		case errors.As(err, &typeErr):
			field := typeErr.Field
			if field == "" {
				field = "body"
			}
			return core.NewValidationError(field, typeMessage(typeErr.Type))
		}
		return core.NewValidationError("body", "must be valid JSON")
	}
	return nil
}

func typeMessage(t reflect.Type) string {
	switch t {
	case reflect.TypeOf(core.Money{}):
		return "must be an amount with at most 2 decimals, up to 99999999.99"
	case reflect.TypeOf(core.Date{}):
		return "must be a date in YYYY-MM-DD format"
	}
	return "has the wrong type"
}

// pathID returns the {id} route variable. The route pattern only matches
// digits, so the error path is overflow.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, core.NewValidationError("id", "must be a positive integer")
	}
	return id, nil
}

func userIDFrom(r *http.Request) int64 {
	return auth.UserIDFrom(r.Context())
}

// queryInt parses a positive integer query parameter, returning def when absent.
func queryInt(q url.Values, key string, def int) (int, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, core.NewValidationError(key, "must be a positive integer")
	}
	return n, nil
}

// PageParams is a requested page of a listing.
type PageParams struct {
	Page  int
	Limit int
}

// ParsePageParams reads page and limit; limit is capped at 100.
func ParsePageParams(q url.Values) (PageParams, error) {
	page, err := queryInt(q, "page", defaultPage)
	if err != nil {
		return PageParams{}, err
	}
	limit, err := queryInt(q, "limit", defaultPageSize)
	if err != nil {
		return PageParams{}, err
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if page > math.MaxInt/limit {
		return PageParams{}, core.NewValidationError("page", "is too large")
	}
	return PageParams{Page: page, Limit: limit}, nil
}

// ParseRecentLimit reads the limit of /transactions/recent.
func ParseRecentLimit(q url.Values) (int, error) {
	n, err := queryInt(q, "limit", defaultRecent)
	if err != nil {
		return 0, err
	}
	if n > maxRecent {
		n = maxRecent
	}
	return n, nil
}

// ParseTransactionFilter reads the listing filters shared by the list and
// export routes. startDate and endDate override the dateRange window.
func ParseTransactionFilter(q url.Values, now time.Time) (core.TransactionFilter, error) {
	var f core.TransactionFilter
	v := &core.ValidationError{}

	t, err := core.ParseTransactionType(q.Get("type"))
	if err != nil {
		v.Add("type", "must be income, expense or all")
	}
	f.Type = t

	switch c := strings.ToLower(strings.TrimSpace(q.Get("categoryId"))); c {
	case "", "all":
	default:
		id, err := strconv.ParseInt(c, 10, 64)
		if err != nil || id <= 0 {
			v.Add("categoryId", "must be a category id or all")
		}
		f.CategoryID = id
	}

	from, to, err := core.DateRangeWindow(q.Get("dateRange"), now)
	if err != nil {
		v.Add("dateRange", "must be one of month, 3months, 6months, year, all")
	}
	f.From, f.To = from, to

	if s := strings.TrimSpace(q.Get("startDate")); s != "" {
		d, err := core.ParseDate(s)
		if err != nil {
			v.Add("startDate", "must be a date (YYYY-MM-DD)")
		}
		f.From = d
	}
	if s := strings.TrimSpace(q.Get("endDate")); s != "" {
		d, err := core.ParseDate(s)
		if err != nil {
			v.Add("endDate", "must be a date (YYYY-MM-DD)")
		}
		f.To = d
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From.Time) {
		v.Add("endDate", "must not be before startDate")
	}

	f.Search = sanitizeInput(q.Get("search"))
	if err := v.Err(); err != nil {
		return core.TransactionFilter{}, err
	}
	return f, nil
}

// ParseBudgetFilter reads the optional month and year of the budget listing.
func ParseBudgetFilter(q url.Values) (core.BudgetFilter, error) {
	var f core.BudgetFilter
	v := &core.ValidationError{}
	if s := strings.TrimSpace(q.Get("month")); s != "" {
		m, err := strconv.Atoi(s)
		if err != nil {
			v.Add("month", "must be between 1 and 12")
		}
		f.Month = m
	}
	if s := strings.TrimSpace(q.Get("year")); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil {
			v.Add("year", "must be between 2000 and 2100")
		}
		f.Year = y
	}
	if err := v.Err(); err != nil {
		return core.BudgetFilter{}, err
	}
	return f, f.Validate()
}

// sanitizeInput trims and removes control characters except tab and newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
