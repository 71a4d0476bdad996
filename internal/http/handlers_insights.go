package http

import (
	"net/http"
)

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	ov, err := s.insights.Overview(r.Context(), userIDFrom(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(ov).Write(w)
}

func (s *Server) handleSpendingChart(w http.ResponseWriter, r *http.Request) {
	chart, err := s.insights.SpendingChart(r.Context(), userIDFrom(r), r.URL.Query().Get("timeRange"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(chart).Write(w)
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	report, err := s.insights.Report(r.Context(), userIDFrom(r), q.Get("reportType"), q.Get("timeRange"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(report).Write(w)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	view, err := s.insights.Suggestions(r.Context(), userIDFrom(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(view).Write(w)
}
