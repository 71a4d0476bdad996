package http

import (
	"net/http"

	"ecobrain/internal/core"
)

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	f, err := ParseBudgetFilter(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	statuses, err := s.ledger.BudgetStatuses(r.Context(), userIDFrom(r), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(statuses).Write(w)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var in core.NewBudgetCategory
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	b, err := s.ledger.CreateBudgetCategory(r.Context(), userIDFrom(r), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(b).Write(w)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in core.BudgetCategoryUpdate
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	b, err := s.ledger.UpdateBudgetCategory(r.Context(), userIDFrom(r), id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(b).Write(w)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.ledger.DeleteBudgetCategory(r.Context(), userIDFrom(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Success().Write(w)
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	view, err := s.ledger.ListGoals(r.Context(), userIDFrom(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(view).Write(w)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var in core.NewGoal
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	g, err := s.ledger.CreateGoal(r.Context(), userIDFrom(r), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(g).Write(w)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in core.GoalUpdate
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	g, err := s.ledger.UpdateGoal(r.Context(), userIDFrom(r), id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(g).Write(w)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.ledger.DeleteGoal(r.Context(), userIDFrom(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Success().Write(w)
}

func (s *Server) handleListInvestments(w http.ResponseWriter, r *http.Request) {
	view, err := s.ledger.ListInvestments(r.Context(), userIDFrom(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(view).Write(w)
}

func (s *Server) handleCreateInvestment(w http.ResponseWriter, r *http.Request) {
	var in core.NewInvestment
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	inv, err := s.ledger.CreateInvestment(r.Context(), userIDFrom(r), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(inv).Write(w)
}

func (s *Server) handleUpdateInvestment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in core.InvestmentUpdate
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	inv, err := s.ledger.UpdateInvestment(r.Context(), userIDFrom(r), id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(inv).Write(w)
}

func (s *Server) handleDeleteInvestment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.ledger.DeleteInvestment(r.Context(), userIDFrom(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Success().Write(w)
}
