package core

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Date{Time: t}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(t), nil
	}
	return Date{}, ErrInvalidDate
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	parsed, err := ParseDate(strings.Trim(s, `"`))
	if err != nil {
		return &json.UnmarshalTypeError{Value: jsonKind(s), Type: reflect.TypeOf(Date{})}
	}
	*d = parsed
	return nil
}

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

func MonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// Add moves n months forward (or back when n is negative).
func (ym YearMonth) Add(n int) YearMonth {
	return MonthOf(time.Date(ym.Year, ym.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC))
}

// Start is the first day of the month.
func (ym YearMonth) Start() Date {
	return NewDate(ym.Year, int(ym.Month), 1)
}

// End is the last day of the month.
func (ym YearMonth) End() Date {
	return Date{Time: ym.Start().AddDate(0, 1, -1)}
}

func (ym YearMonth) Contains(d Date) bool {
	return d.Year() == ym.Year && d.Time.Month() == ym.Month
}

// Label is the three-letter English month name, e.g. "Jan".
func (ym YearMonth) Label() string {
	return ym.Month.String()[:3]
}

// LastMonths returns n months ending with the month of now, oldest first.
func LastMonths(now time.Time, n int) []YearMonth {
	if n < 1 {
		n = 1
	}
	current := MonthOf(now)
	months := make([]YearMonth, n)
	for i := 0; i < n; i++ {
		months[i] = current.Add(i - n + 1)
	}
	return months
}

// MonthsOfYear returns January through December of year.
func MonthsOfYear(year int) []YearMonth {
	months := make([]YearMonth, 12)
	for i := range months {
		months[i] = YearMonth{Year: year, Month: time.Month(i + 1)}
	}
	return months
}

// ParseTimeRange maps a range keyword to a number of months. The empty
// string yields def.
func ParseTimeRange(field, s string, def int) (int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return def, nil
	case "month", "1month":
		return 1, nil
	case "3months":
		return 3, nil
	case "6months":
		return 6, nil
	case "12months", "year":
		return 12, nil
	}
	return 0, NewValidationError(field, "must be one of month, 3months, 6months, 12months, year")
}

// DateRangeWindow resolves a transaction-list dateRange keyword to an
// inclusive window ending at the end of the current month. "all" and the
// empty string return zero dates, meaning unbounded.
func DateRangeWindow(s string, now time.Time) (from, to Date, err error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "all" {
		return Date{}, Date{}, nil
	}
	n, err := ParseTimeRange("dateRange", s, 0)
	if err != nil {
		return Date{}, Date{}, err
	}
	months := LastMonths(now, n)
	return months[0].Start(), months[len(months)-1].End(), nil
}
