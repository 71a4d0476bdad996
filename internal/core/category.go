package core

import "strings"

type NewCategory struct {
	Name  string          `json:"name"`
	Type  TransactionType `json:"type"`
	Color string          `json:"color"`
	Icon  string          `json:"icon"`
}

func (c NewCategory) Validate() error {
	v := &ValidationError{}
	v.minLen("name", c.Name, 2)
	if !c.Type.IsValid() {
		v.Add("type", "must be income or expense")
	}
	return v.Err()
}

func (c NewCategory) Category(userID int64) Category {
	return Category{
		UserID: userID,
		Name:   strings.TrimSpace(c.Name),
		Type:   c.Type,
		Color:  strings.TrimSpace(c.Color),
		Icon:   strings.TrimSpace(c.Icon),
	}
}

// CategoryUpdate is a partial update; nil fields are left untouched.
type CategoryUpdate struct {
	Name  *string          `json:"name"`
	Type  *TransactionType `json:"type"`
	Color *string          `json:"color"`
	Icon  *string          `json:"icon"`
}

func (u CategoryUpdate) Validate() error {
	v := &ValidationError{}
	if u.Name != nil {
		v.minLen("name", *u.Name, 2)
	}
	if u.Type != nil && !u.Type.IsValid() {
		v.Add("type", "must be income or expense")
	}
	return v.Err()
}

func (u CategoryUpdate) Apply(c *Category) {
	if u.Name != nil {
		c.Name = strings.TrimSpace(*u.Name)
	}
	if u.Type != nil {
		c.Type = *u.Type
	}
	if u.Color != nil {
		c.Color = strings.TrimSpace(*u.Color)
	}
	if u.Icon != nil {
		c.Icon = strings.TrimSpace(*u.Icon)
	}
}

// DefaultCategories are created for every new account.
func DefaultCategories() []NewCategory {
	return []NewCategory{
		{Name: "Food", Type: TypeExpense, Color: "#4CAF50", Icon: "restaurant"},
		{Name: "Housing", Type: TypeExpense, Color: "#2196F3", Icon: "home"},
		{Name: "Transport", Type: TypeExpense, Color: "#FF9800", Icon: "directions_car"},
		{Name: "Entertainment", Type: TypeExpense, Color: "#F44336", Icon: "movie"},
		{Name: "Health", Type: TypeExpense, Color: "#E91E63", Icon: "medical_services"},
		{Name: "Education", Type: TypeExpense, Color: "#673AB7", Icon: "school"},
		{Name: "Shopping", Type: TypeExpense, Color: "#3F51B5", Icon: "shopping_bag"},
		{Name: "Bills", Type: TypeExpense, Color: "#607D8B", Icon: "receipt"},
		{Name: "Income", Type: TypeIncome, Color: "#4CAF50", Icon: "payments"},
		{Name: "Investments", Type: TypeExpense, Color: "#009688", Icon: "trending_up"},
	}
}
