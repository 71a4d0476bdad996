package http

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	}).Write(w)
}

// handleReady pings the database.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]any{
		"rate_limiter": map[string]any{"active_clients": s.limiter.ActiveClients(), "status": "ok"},
		"user_cache":   map[string]any{"entries": s.authMW.Cache().Size(), "status": "ok"},
	}
	if err := s.insights.Ping(ctx); err != nil {
		checks["database"] = "failed: " + err.Error()
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	NewJSONResponse().Status(code).Body(map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics writes counters in the Prometheus text exposition format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	tm := s.tracer.GetMetrics()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	metric("ecobrain_http_requests_total", "counter", "Total number of HTTP requests served.", tm.TotalRequests)
	metric("ecobrain_http_server_errors_total", "counter", "Requests answered with a 5xx status.", tm.ServerErrors)
	metric("ecobrain_http_active_requests", "gauge", "Requests currently in flight.", tm.ActiveRequests)
	metric("ecobrain_http_request_duration_seconds_avg", "gauge", "Mean request latency since start.",
		fmt.Sprintf("%.6f", tm.AverageLatency().Seconds()))
	metric("ecobrain_rate_limit_active_clients", "gauge", "Clients tracked by the rate limiter.", s.limiter.ActiveClients())
	metric("ecobrain_rate_limit_rejected_total", "counter", "Requests refused by the rate limiter.", s.limiter.Rejected())
	metric("ecobrain_suspicious_requests_total", "counter", "Requests flagged by the security detector.", s.detector.SuspiciousRequests())
	metric("ecobrain_user_cache_entries", "gauge", "Authenticated users held in the cache.", s.authMW.Cache().Size())
	metric("ecobrain_uptime_seconds", "gauge", "Process uptime.", fmt.Sprintf("%.0f", time.Since(s.startedAt).Seconds()))
}
