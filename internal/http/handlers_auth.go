package http

import (
	"net/http"
	"time"

	"ecobrain/internal/auth"
	"ecobrain/internal/core"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in core.NewUser
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.accounts.Register(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(sess).Write(w)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in core.Credentials
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.accounts.Login(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().
		Cookie(sessionCookie(r, sess.Token, s.accounts.TokenTTL())).
		Body(sess).
		Write(w)
}

// handleLogout clears the cookie and the cached account. Bearer tokens stay
// valid until they expire; there is no server-side session to revoke.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.authMW.Forget(r)
	NewJSONResponse().
		Cookie(sessionCookie(r, "", -1)).
		Success().
		Write(w)
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFrom(r.Context())
	if !ok {
		s.writeError(w, r, core.ErrUnauthorized)
		return
	}
	NewJSONResponse().Body(u).Write(w)
}

// sessionCookie builds the HttpOnly token cookie; a negative maxAge deletes it.
func sessionCookie(r *http.Request, token string, maxAge int) *http.Cookie {
	c := &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge < 0 {
		c.Expires = time.Unix(0, 0)
	}
	return c
}
