// Package http exposes the JSON API under /api and the operational
// endpoints (/healthz, /readyz, /metrics).
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"ecobrain/internal/auth"
	"ecobrain/internal/cache"
	"ecobrain/internal/core"
	"ecobrain/internal/middleware/ratelimit"
	"ecobrain/internal/middleware/security"
	"ecobrain/internal/middleware/trace"
	"ecobrain/internal/services"
)

const (
	defaultRequestTimeout = 7 * time.Second
	maxBodyBytes          = 1 << 20
)

// Deps is everything the server needs. Ledger, Insights, Auth and Tokens
// are required.
type Deps struct {
	Ledger   *services.LedgerService
	Insights *services.InsightService
	Auth     *services.AuthService
	Tokens   *auth.Tokens
	Users    auth.UserLookup

	RequestTimeout time.Duration
	RateLimit      int
	// Now pins the clock used for dateRange windows. Defaults to time.Now.
	Now func() time.Time
}

type Server struct {
	http.Server

	ledger   *services.LedgerService
	insights *services.InsightService
	accounts *services.AuthService

	authMW       *auth.Middleware
	limiter      *ratelimit.Limiter
	tracer       *trace.Middleware
	detector     *security.Detector
	caches       *cache.Manager
	timeout      time.Duration
	now          func() time.Time
	startedAt    time.Time
	shutdownOnce sync.Once
}

// NewServer builds the router and the middleware chain, returning a
// ready-to-run http.Server.
func NewServer(addr string, deps Deps) *Server {
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = defaultRequestTimeout
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	users := deps.Users
	if users == nil {
		users = userLookupFunc(deps.Auth.User)
	}

	s := &Server{
		ledger:    deps.Ledger,
		insights:  deps.Insights,
		accounts:  deps.Auth,
		detector:  security.NewDetector(),
		caches:    cache.NewManager(),
		timeout:   deps.RequestTimeout,
		now:       deps.Now,
		startedAt: time.Now(),
	}
	s.authMW = auth.NewMiddleware(deps.Tokens, users, func(w http.ResponseWriter, r *http.Request, err error) {
		s.writeError(w, r, err)
	})
	s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.RateLimit})
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP)

	s.caches.Register(s.authMW.Cache())
	s.caches.StartCleanup(10 * time.Minute)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		NewJSONResponse().Status(http.StatusNotFound).Message("Route not found").Write(w)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		NewJSONResponse().Status(http.StatusMethodNotAllowed).Message("Method not allowed").Write(w)
	})

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	r.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.limiter.Middleware(s.detector.ExtractClientIP, s.handleRateLimited))
	api.Use(s.withTimeout)

	api.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)

	priv := api.NewRoute().Subrouter()
	priv.Use(s.authMW.Middleware)

	priv.HandleFunc("/user", s.handleCurrentUser).Methods(http.MethodGet)

	priv.HandleFunc("/categories", s.handleListCategories).Methods(http.MethodGet)
	priv.HandleFunc("/categories", s.handleCreateCategory).Methods(http.MethodPost)
	priv.HandleFunc("/categories/{id:[0-9]+}", s.handleUpdateCategory).Methods(http.MethodPatch)
	priv.HandleFunc("/categories/{id:[0-9]+}", s.handleDeleteCategory).Methods(http.MethodDelete)

	priv.HandleFunc("/transactions", s.handleListTransactions).Methods(http.MethodGet)
	priv.HandleFunc("/transactions/recent", s.handleRecentTransactions).Methods(http.MethodGet)
	priv.HandleFunc("/transactions/export", s.handleExportTransactions).Methods(http.MethodGet)
	priv.HandleFunc("/transactions/{id:[0-9]+}", s.handleGetTransaction).Methods(http.MethodGet)
	priv.HandleFunc("/transactions", s.handleCreateTransaction).Methods(http.MethodPost)
	priv.HandleFunc("/transactions/{id:[0-9]+}", s.handleUpdateTransaction).Methods(http.MethodPut)
	priv.HandleFunc("/transactions/{id:[0-9]+}", s.handleDeleteTransaction).Methods(http.MethodDelete)

	priv.HandleFunc("/dashboard/overview", s.handleOverview).Methods(http.MethodGet)
	priv.HandleFunc("/dashboard/spending-chart", s.handleSpendingChart).Methods(http.MethodGet)

	priv.HandleFunc("/budget/categories", s.handleListBudgets).Methods(http.MethodGet)
	priv.HandleFunc("/budget/categories", s.handleCreateBudget).Methods(http.MethodPost)
	priv.HandleFunc("/budget/categories/{id:[0-9]+}", s.handleUpdateBudget).Methods(http.MethodPut)
	priv.HandleFunc("/budget/categories/{id:[0-9]+}", s.handleDeleteBudget).Methods(http.MethodDelete)

	priv.HandleFunc("/goals", s.handleListGoals).Methods(http.MethodGet)
	priv.HandleFunc("/goals", s.handleCreateGoal).Methods(http.MethodPost)
	priv.HandleFunc("/goals/{id:[0-9]+}", s.handleUpdateGoal).Methods(http.MethodPatch)
	priv.HandleFunc("/goals/{id:[0-9]+}", s.handleDeleteGoal).Methods(http.MethodDelete)

	priv.HandleFunc("/investments", s.handleListInvestments).Methods(http.MethodGet)
	priv.HandleFunc("/investments", s.handleCreateInvestment).Methods(http.MethodPost)
	priv.HandleFunc("/investments/{id:[0-9]+}", s.handleUpdateInvestment).Methods(http.MethodPatch)
	priv.HandleFunc("/investments/{id:[0-9]+}", s.handleDeleteInvestment).Methods(http.MethodDelete)

	priv.HandleFunc("/reports", s.handleReports).Methods(http.MethodGet)
	priv.HandleFunc("/ai/suggestions", s.handleSuggestions).Methods(http.MethodGet)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	var h http.Handler = r
	h = headers.Middleware(h)
	h = s.detector.Middleware(h)
	h = s.tracer.Middleware(h)
	return h
}

type userLookupFunc func(ctx context.Context, id int64) (core.User, error)

func (f userLookupFunc) GetUser(ctx context.Context, id int64) (core.User, error) {
	return f(ctx, id)
}

// withTimeout bounds every API request; store calls inherit the deadline.
func (s *Server) withTimeout(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().
		Status(http.StatusTooManyRequests).
		Message("Rate limit exceeded. Please try again later.").
		Write(w)
}

// Shutdown stops the background sweepers and then the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
