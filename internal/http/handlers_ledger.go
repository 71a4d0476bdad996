package http

import (
	"net/http"

	"ecobrain/internal/core"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.ledger.ListCategories(r.Context(), userIDFrom(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(cats).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var in core.NewCategory
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.ledger.CreateCategory(r.Context(), userIDFrom(r), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(c).Write(w)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in core.CategoryUpdate
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.ledger.UpdateCategory(r.Context(), userIDFrom(r), id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(c).Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.ledger.DeleteCategory(r.Context(), userIDFrom(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Success().Write(w)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := ParsePageParams(q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := ParseTransactionFilter(q, s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.ledger.ListTransactions(r.Context(), userIDFrom(r), f, page.Page, page.Limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(res).Write(w)
}

func (s *Server) handleRecentTransactions(w http.ResponseWriter, r *http.Request) {
	n, err := ParseRecentLimit(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	txs, err := s.ledger.RecentTransactions(r.Context(), userIDFrom(r), n)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	NewJSONResponse().Body(txs).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tx, err := s.ledger.GetTransaction(r.Context(), userIDFrom(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(tx).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in core.NewTransaction
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	tx, err := s.ledger.CreateTransaction(r.Context(), userIDFrom(r), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(tx).Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in core.TransactionUpdate
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	tx, err := s.ledger.UpdateTransaction(r.Context(), userIDFrom(r), id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(tx).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.ledger.DeleteTransaction(r.Context(), userIDFrom(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Success().Write(w)
}
