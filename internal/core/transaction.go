package core

import "strings"

const maxDescriptionLen = 200

type NewTransaction struct {
	CategoryID  int64           `json:"categoryId"`
	Description string          `json:"description"`
	Amount      Money           `json:"amount"`
	Date        Date            `json:"date"`
	Type        TransactionType `json:"type"`
	IsRecurring bool            `json:"isRecurring"`
	Notes       string          `json:"notes"`
}

func (t NewTransaction) Validate() error {
	v := &ValidationError{}
	if t.CategoryID <= 0 {
		v.Add("categoryId", "is required")
	}
	validateDescription(v, t.Description)
	v.positive("amount", t.Amount)
	v.date("date", t.Date)
	if !t.Type.IsValid() {
		v.Add("type", "must be income or expense")
	}
	return v.Err()
}

func (t NewTransaction) Transaction(userID int64) Transaction {
	return Transaction{
		UserID:      userID,
		CategoryID:  t.CategoryID,
		Description: strings.TrimSpace(t.Description),
		Amount:      t.Amount,
		Date:        t.Date,
		Type:        t.Type,
		IsRecurring: t.IsRecurring,
		Notes:       strings.TrimSpace(t.Notes),
	}
}

// TransactionUpdate is a partial update; nil fields are left untouched.
type TransactionUpdate struct {
	CategoryID  *int64           `json:"categoryId"`
	Description *string          `json:"description"`
	Amount      *Money           `json:"amount"`
	Date        *Date            `json:"date"`
	Type        *TransactionType `json:"type"`
	IsRecurring *bool            `json:"isRecurring"`
	Notes       *string          `json:"notes"`
}

func (u TransactionUpdate) Validate() error {
	v := &ValidationError{}
	if u.CategoryID != nil && *u.CategoryID <= 0 {
		v.Add("categoryId", "is required")
	}
	if u.Description != nil {
		validateDescription(v, *u.Description)
	}
	if u.Amount != nil {
		v.positive("amount", *u.Amount)
	}
	if u.Date != nil {
		v.date("date", *u.Date)
	}
	if u.Type != nil && !u.Type.IsValid() {
		v.Add("type", "must be income or expense")
	}
	return v.Err()
}

func (u TransactionUpdate) Apply(t *Transaction) {
	if u.CategoryID != nil {
		t.CategoryID = *u.CategoryID
	}
	if u.Description != nil {
		t.Description = strings.TrimSpace(*u.Description)
	}
	if u.Amount != nil {
		t.Amount = *u.Amount
	}
	if u.Date != nil {
		t.Date = *u.Date
	}
	if u.Type != nil {
		t.Type = *u.Type
	}
	if u.IsRecurring != nil {
		t.IsRecurring = *u.IsRecurring
	}
	if u.Notes != nil {
		t.Notes = strings.TrimSpace(*u.Notes)
	}
}

// TransactionFilter narrows a listing. Zero values mean no constraint.
type TransactionFilter struct {
	Type       TransactionType
	CategoryID int64
	From       Date
	To         Date
	Search     string
	Limit      int
	Offset     int
}

// Unpaged returns a copy of f without limit and offset, as used for counts and exports.
func (f TransactionFilter) Unpaged() TransactionFilter {
	f.Limit, f.Offset = 0, 0
	return f
}

func validateDescription(v *ValidationError, s string) {
	v.minLen("description", s, 2)
	if len(strings.TrimSpace(s)) > maxDescriptionLen {
		v.Add("description", "must be at most %d characters", maxDescriptionLen)
	}
}
