package core

import (
	"strings"
	"time"
)

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

type (
	// TransactionType discriminates money in from money out. Categories share it.
	TransactionType string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	User struct {
		ID           int64     `json:"id"`
		Username     string    `json:"username"`
		Email        string    `json:"email"`
		PasswordHash string    `json:"-"`
		FirstName    string    `json:"firstName"`
		LastName     string    `json:"lastName"`
		CreatedAt    time.Time `json:"createdAt"`
		UpdatedAt    time.Time `json:"updatedAt"`
	}

	Category struct {
		ID        int64           `json:"id"`
		UserID    int64           `json:"userId"`
		Name      string          `json:"name"`
		Type      TransactionType `json:"type"`
		Color     string          `json:"color"`
		Icon      string          `json:"icon"`
		CreatedAt time.Time       `json:"createdAt"`
		UpdatedAt time.Time       `json:"updatedAt"`
	}

	Transaction struct {
		ID          int64           `json:"id"`
		UserID      int64           `json:"userId"`
		CategoryID  int64           `json:"categoryId"`
		Description string          `json:"description"`
		Amount      Money           `json:"amount"`
		Date        Date            `json:"date"`
		Type        TransactionType `json:"type"`
		IsRecurring bool            `json:"isRecurring"`
		Notes       string          `json:"notes"`
		// SourceID links a generated copy to the recurring transaction it came from.
		SourceID  *int64    `json:"sourceId,omitempty"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	// BudgetCategory caps spending for one category in one month.
	BudgetCategory struct {
		ID         int64     `json:"id"`
		UserID     int64     `json:"userId"`
		CategoryID int64     `json:"categoryId"`
		Amount     Money     `json:"amount"`
		Month      int       `json:"month"`
		Year       int       `json:"year"`
		CreatedAt  time.Time `json:"createdAt"`
		UpdatedAt  time.Time `json:"updatedAt"`
	}

	// BudgetStatus is a budget row joined with its category and what was spent against it.
	BudgetStatus struct {
		BudgetCategory
		CategoryName string `json:"categoryName"`
		Color        string `json:"color"`
		Icon         string `json:"icon"`
		Spent        Money  `json:"spent"`
		Percentage   int    `json:"percentage"`
	}

	Goal struct {
		ID            int64     `json:"id"`
		UserID        int64     `json:"userId"`
		Name          string    `json:"name"`
		Target        Money     `json:"target"`
		CurrentAmount Money     `json:"currentAmount"`
		Deadline      Date      `json:"deadline"`
		Category      string    `json:"category"`
		Notes         string    `json:"notes"`
		CreatedAt     time.Time `json:"createdAt"`
		UpdatedAt     time.Time `json:"updatedAt"`
	}

	Investment struct {
		ID           int64     `json:"id"`
		UserID       int64     `json:"userId"`
		Name         string    `json:"name"`
		Type         string    `json:"type"`
		Value        Money     `json:"value"`
		InitialValue Money     `json:"initialValue"`
		InitialDate  Date      `json:"initialDate"`
		Institution  string    `json:"institution"`
		ReturnRate   *float64  `json:"returnRate"`
		Notes        string    `json:"notes"`
		CreatedAt    time.Time `json:"createdAt"`
		UpdatedAt    time.Time `json:"updatedAt"`
	}
)

// Owned is implemented by every user-scoped entity.
type Owned interface {
	OwnerID() int64
}

func (c Category) OwnerID() int64       { return c.UserID }
func (t Transaction) OwnerID() int64    { return t.UserID }
func (b BudgetCategory) OwnerID() int64 { return b.UserID }
func (g Goal) OwnerID() int64           { return g.UserID }
func (i Investment) OwnerID() int64     { return i.UserID }

func (t TransactionType) IsValid() bool {
	return t == TypeIncome || t == TypeExpense
}

// ParseTransactionType accepts "income" or "expense" case-insensitively.
// "all" and the empty string yield the zero value, meaning no filter.
func ParseTransactionType(s string) (TransactionType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "all" {
		return "", nil
	}
	t := TransactionType(s)
	if !t.IsValid() {
		return "", NewValidationError("type", "must be income or expense")
	}
	return t, nil
}

// DisplayName returns "First Last" or just the first name.
func (u User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
