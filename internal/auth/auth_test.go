package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecobrain/internal/core"
)

var secret = strings.Repeat("k", 32)

func TestPasswordHashing(t *testing.T) {
	h := NewHasher(4)
	hash, err := h.Hash("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.NoError(t, h.Compare(hash, "hunter22"))
	assert.ErrorIs(t, h.Compare(hash, "hunter23"), core.ErrUnauthorized)
}

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokens(secret, time.Hour)
	raw, err := tokens.Issue(42)
	require.NoError(t, err)

	id, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestTokenRejections(t *testing.T) {
	tokens := NewTokens(secret, time.Hour)
	raw, err := tokens.Issue(42)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewTokens(strings.Repeat("x", 32), time.Hour).Parse(raw)
		assert.ErrorIs(t, err, core.ErrUnauthorized)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewTokens(secret, time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Parse(raw)
		assert.ErrorIs(t, err, core.ErrUnauthorized)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.Parse("not.a.token")
		assert.ErrorIs(t, err, core.ErrUnauthorized)
	})
}

type stubUsers struct {
	users map[int64]core.User
	calls int
}

func (s *stubUsers) GetUser(_ context.Context, id int64) (core.User, error) {
	s.calls++
	u, ok := s.users[id]
	if !ok {
		return core.User{}, core.ErrNotFound
	}
	return u, nil
}

func TestMiddleware(t *testing.T) {
	tokens := NewTokens(secret, time.Hour)
	users := &stubUsers{users: map[int64]core.User{7: {ID: 7, Username: "alice"}}}
	m := NewMiddleware(tokens, users, func(w http.ResponseWriter, r *http.Request, err error) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFrom(r.Context())
		require.True(t, ok)
		w.Write([]byte(u.Username))
	}))

	good, err := tokens.Issue(7)
	require.NoError(t, err)
	orphan, err := tokens.Issue(8)
	require.NoError(t, err)

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
		req.Header.Set("Authorization", "Bearer "+good)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "alice", rec.Body.String())
	})

	t.Run("cookie fallback uses cache", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: good})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, users.calls)
	})

	t.Run("forget reloads the user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
		req.Header.Set("Authorization", "Bearer "+good)
		require.True(t, m.Forget(req))
		assert.Equal(t, 0, m.Cache().Size())
		assert.False(t, m.Forget(httptest.NewRequest(http.MethodPost, "/api/logout", nil)))

		req = httptest.NewRequest(http.MethodGet, "/api/user", nil)
		req.Header.Set("Authorization", "Bearer "+good)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 2, users.calls)
	})

	for name, header := range map[string]string{
		"missing token": "",
		"bad token":     "Bearer nope",
		"wrong scheme":  "Basic " + good,
		"deleted user":  "Bearer " + orphan,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}
