package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ecobrain/internal/cache"
	"ecobrain/internal/core"
	applog "ecobrain/internal/log"
)

// CookieName carries the session token for browser clients.
const CookieName = "ecobrain_token"

// UserLookup loads the account behind a token.
type UserLookup interface {
	GetUser(ctx context.Context, id int64) (core.User, error)
}

// Middleware authenticates requests by bearer token or session cookie.
type Middleware struct {
	tokens         *Tokens
	users          UserLookup
	cache          *cache.LRUCache[int64, core.User]
	onUnauthorized func(http.ResponseWriter, *http.Request, error)
}

// NewMiddleware caches resolved users for a short while so that
// a burst of requests costs one lookup.
func NewMiddleware(tokens *Tokens, users UserLookup, onUnauthorized func(http.ResponseWriter, *http.Request, error)) *Middleware {
	return &Middleware{
		tokens:         tokens,
		users:          users,
		cache:          cache.NewLRUCache[int64, core.User](1024, time.Minute),
		onUnauthorized: onUnauthorized,
	}
}

// Cache exposes the user cache so it can be registered for cleanup.
func (m *Middleware) Cache() *cache.LRUCache[int64, core.User] {
	return m.cache
}

// Forget drops the cached user behind the request's token so the next
// request with a token for that account reloads it. It reports whether the
// request carried a valid token.
func (m *Middleware) Forget(r *http.Request) bool {
	raw := TokenFromRequest(r)
	if raw == "" {
		return false
	}
	userID, err := m.tokens.Parse(raw)
	if err != nil {
		return false
	}
	m.cache.Delete(userID)
	return true
}

func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.authenticate(r)
		if err != nil {
			slog.DebugContext(r.Context(), "Authentication failed",
				applog.FieldComponent, applog.ComponentAuth,
				applog.FieldPath, r.URL.Path,
				applog.FieldError, err.Error())
			m.unauthorized(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func (m *Middleware) authenticate(r *http.Request) (core.User, error) {
	raw := TokenFromRequest(r)
	if raw == "" {
		return core.User{}, fmt.Errorf("missing token: %w", core.ErrUnauthorized)
	}

	userID, err := m.tokens.Parse(raw)
	if err != nil {
		return core.User{}, err
	}

	if u, ok := m.cache.Get(userID); ok {
		return u, nil
	}

	u, err := m.users.GetUser(r.Context(), userID)
	if errors.Is(err, core.ErrNotFound) {
		return core.User{}, fmt.Errorf("token for deleted user %d: %w", userID, core.ErrUnauthorized)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("load user: %w", err)
	}
	m.cache.Set(userID, u)
	return u, nil
}

func (m *Middleware) unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	if m.onUnauthorized != nil {
		m.onUnauthorized(w, r, err)
		return
	}
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}

// TokenFromRequest reads the Authorization bearer token, falling back to
// the session cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}
