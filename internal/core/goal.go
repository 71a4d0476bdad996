package core

import "strings"

type NewGoal struct {
	Name          string `json:"name"`
	Target        Money  `json:"target"`
	CurrentAmount Money  `json:"currentAmount"`
	Deadline      Date   `json:"deadline"`
	Category      string `json:"category"`
	Notes         string `json:"notes"`
}

// Validate does not reject past deadlines.
func (g NewGoal) Validate() error {
	v := &ValidationError{}
	v.minLen("name", g.Name, 2)
	v.positive("target", g.Target)
	v.nonNegative("currentAmount", g.CurrentAmount)
	v.date("deadline", g.Deadline)
	v.minLen("category", g.Category, 1)
	return v.Err()
}

func (g NewGoal) Goal(userID int64) Goal {
	return Goal{
		UserID:        userID,
		Name:          strings.TrimSpace(g.Name),
		Target:        g.Target,
		CurrentAmount: g.CurrentAmount,
		Deadline:      g.Deadline,
		Category:      strings.TrimSpace(g.Category),
		Notes:         strings.TrimSpace(g.Notes),
	}
}

// GoalUpdate is a partial update; nil fields are left untouched.
type GoalUpdate struct {
	Name          *string `json:"name"`
	Target        *Money  `json:"target"`
	CurrentAmount *Money  `json:"currentAmount"`
	Deadline      *Date   `json:"deadline"`
	Category      *string `json:"category"`
	Notes         *string `json:"notes"`
}

func (u GoalUpdate) Validate() error {
	v := &ValidationError{}
	if u.Name != nil {
		v.minLen("name", *u.Name, 2)
	}
	if u.Target != nil {
		v.positive("target", *u.Target)
	}
	if u.CurrentAmount != nil {
		v.nonNegative("currentAmount", *u.CurrentAmount)
	}
	if u.Deadline != nil {
		v.date("deadline", *u.Deadline)
	}
	if u.Category != nil {
		v.minLen("category", *u.Category, 1)
	}
	return v.Err()
}

func (u GoalUpdate) Apply(g *Goal) {
	if u.Name != nil {
		g.Name = strings.TrimSpace(*u.Name)
	}
	if u.Target != nil {
		g.Target = *u.Target
	}
	if u.CurrentAmount != nil {
		g.CurrentAmount = *u.CurrentAmount
	}
	if u.Deadline != nil {
		g.Deadline = *u.Deadline
	}
	if u.Category != nil {
		g.Category = strings.TrimSpace(*u.Category)
	}
	if u.Notes != nil {
		g.Notes = strings.TrimSpace(*u.Notes)
	}
}

// Progress is the share of the target already saved, in percent.
func (g Goal) Progress() float64 {
	return Percent(g.CurrentAmount, g.Target)
}
