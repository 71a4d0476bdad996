package core

import "time"

type NewBudgetCategory struct {
	CategoryID int64 `json:"categoryId"`
	Amount     Money `json:"amount"`
	Month      int   `json:"month"`
	Year       int   `json:"year"`
}

func (b NewBudgetCategory) Validate() error {
	v := &ValidationError{}
	if b.CategoryID <= 0 {
		v.Add("categoryId", "is required")
	}
	v.positive("amount", b.Amount)
	validatePeriod(v, b.Month, b.Year)
	return v.Err()
}

func (b NewBudgetCategory) BudgetCategory(userID int64) BudgetCategory {
	return BudgetCategory{
		UserID:     userID,
		CategoryID: b.CategoryID,
		Amount:     b.Amount,
		Month:      b.Month,
		Year:       b.Year,
	}
}

// BudgetCategoryUpdate is a partial update; nil fields are left untouched.
type BudgetCategoryUpdate struct {
	CategoryID *int64 `json:"categoryId"`
	Amount     *Money `json:"amount"`
	Month      *int   `json:"month"`
	Year       *int   `json:"year"`
}

func (u BudgetCategoryUpdate) Validate() error {
	v := &ValidationError{}
	if u.CategoryID != nil && *u.CategoryID <= 0 {
		v.Add("categoryId", "is required")
	}
	if u.Amount != nil {
		v.positive("amount", *u.Amount)
	}
	if u.Month != nil && (*u.Month < 1 || *u.Month > 12) {
		v.Add("month", "must be between 1 and 12")
	}
	if u.Year != nil && (*u.Year < 2000 || *u.Year > 2100) {
		v.Add("year", "must be between 2000 and 2100")
	}
	return v.Err()
}

func (u BudgetCategoryUpdate) Apply(b *BudgetCategory) {
	if u.CategoryID != nil {
		b.CategoryID = *u.CategoryID
	}
	if u.Amount != nil {
		b.Amount = *u.Amount
	}
	if u.Month != nil {
		b.Month = *u.Month
	}
	if u.Year != nil {
		b.Year = *u.Year
	}
}

// BudgetFilter selects one month; zero fields match any.
type BudgetFilter struct {
	Month int
	Year  int
}

func (f BudgetFilter) Validate() error {
	v := &ValidationError{}
	if f.Month != 0 && (f.Month < 1 || f.Month > 12) {
		v.Add("month", "must be between 1 and 12")
	}
	if f.Year != 0 && (f.Year < 2000 || f.Year > 2100) {
		v.Add("year", "must be between 2000 and 2100")
	}
	return v.Err()
}

// Period returns the calendar month the budget applies to.
func (b BudgetCategory) Period() YearMonth {
	return YearMonth{Year: b.Year, Month: time.Month(b.Month)}
}

// Exceeded reports whether spending is above the budget. Percentage is
// rounded and would hide overruns under half a percent.
func (s BudgetStatus) Exceeded() bool {
	return s.Spent.Cents > s.Amount.Cents
}

func validatePeriod(v *ValidationError, month, year int) {
	if month < 1 || month > 12 {
		v.Add("month", "must be between 1 and 12")
	}
	if year < 2000 || year > 2100 {
		v.Add("year", "must be between 2000 and 2100")
	}
}
