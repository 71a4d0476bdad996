package core

import "strings"

type NewInvestment struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Value        Money    `json:"value"`
	InitialValue Money    `json:"initialValue"`
	InitialDate  Date     `json:"initialDate"`
	Institution  string   `json:"institution"`
	ReturnRate   *float64 `json:"returnRate"`
	Notes        string   `json:"notes"`
}

func (i NewInvestment) Validate() error {
	v := &ValidationError{}
	v.minLen("name", i.Name, 2)
	v.minLen("type", i.Type, 1)
	v.nonNegative("value", i.Value)
	v.nonNegative("initialValue", i.InitialValue)
	v.date("initialDate", i.InitialDate)
	v.minLen("institution", i.Institution, 1)
	return v.Err()
}

func (i NewInvestment) Investment(userID int64) Investment {
	return Investment{
		UserID:       userID,
		Name:         strings.TrimSpace(i.Name),
		Type:         strings.TrimSpace(i.Type),
		Value:        i.Value,
		InitialValue: i.InitialValue,
		InitialDate:  i.InitialDate,
		Institution:  strings.TrimSpace(i.Institution),
		ReturnRate:   i.ReturnRate,
		Notes:        strings.TrimSpace(i.Notes),
	}
}

// InvestmentUpdate is a partial update; nil fields are left untouched.
type InvestmentUpdate struct {
	Name         *string  `json:"name"`
	Type         *string  `json:"type"`
	Value        *Money   `json:"value"`
	InitialValue *Money   `json:"initialValue"`
	InitialDate  *Date    `json:"initialDate"`
	Institution  *string  `json:"institution"`
	ReturnRate   *float64 `json:"returnRate"`
	Notes        *string  `json:"notes"`
}

func (u InvestmentUpdate) Validate() error {
	v := &ValidationError{}
	if u.Name != nil {
		v.minLen("name", *u.Name, 2)
	}
	if u.Type != nil {
		v.minLen("type", *u.Type, 1)
	}
	if u.Value != nil {
		v.nonNegative("value", *u.Value)
	}
	if u.InitialValue != nil {
		v.nonNegative("initialValue", *u.InitialValue)
	}
	if u.InitialDate != nil {
		v.date("initialDate", *u.InitialDate)
	}
	if u.Institution != nil {
		v.minLen("institution", *u.Institution, 1)
	}
	return v.Err()
}

func (u InvestmentUpdate) Apply(i *Investment) {
	if u.Name != nil {
		i.Name = strings.TrimSpace(*u.Name)
	}
	if u.Type != nil {
		i.Type = strings.TrimSpace(*u.Type)
	}
	if u.Value != nil {
		i.Value = *u.Value
	}
	if u.InitialValue != nil {
		i.InitialValue = *u.InitialValue
	}
	if u.InitialDate != nil {
		i.InitialDate = *u.InitialDate
	}
	if u.Institution != nil {
		i.Institution = strings.TrimSpace(*u.Institution)
	}
	if u.ReturnRate != nil {
		rate := *u.ReturnRate
		i.ReturnRate = &rate
	}
	if u.Notes != nil {
		i.Notes = strings.TrimSpace(*u.Notes)
	}
}

// Profit is the current value minus the amount invested.
func (i Investment) Profit() Money {
	return i.Value.Sub(i.InitialValue)
}
