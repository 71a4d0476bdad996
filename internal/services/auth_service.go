package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ecobrain/internal/auth"
	"ecobrain/internal/core"
	"ecobrain/internal/log"
)

// Session is what register and login hand back to the client.
type Session struct {
	User  core.User `json:"user"`
	Token string    `json:"token"`
}

type AuthService struct {
	store  Store
	hasher *auth.Hasher
	tokens *auth.Tokens
}

func NewAuthService(store Store, hasher *auth.Hasher, tokens *auth.Tokens) *AuthService {
	return &AuthService{store: store, hasher: hasher, tokens: tokens}
}

// Register creates the user and seeds the default categories in one unit
// of work. A taken username or email is core.ErrConflict.
func (s *AuthService) Register(ctx context.Context, in core.NewUser) (Session, error) {
	if err := in.Validate(); err != nil {
		return Session{}, err
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return Session{}, err
	}
	u, err := s.store.RegisterUser(ctx, in.User(hash), core.DefaultCategories())
	if err != nil {
		return Session{}, fmt.Errorf("register user: %w", err)
	}
	return s.session(u)
}

// Login checks credentials. Unknown users and wrong passwords are the same
// core.ErrUnauthorized to the caller.
func (s *AuthService) Login(ctx context.Context, in core.Credentials) (Session, error) {
	if err := in.Validate(); err != nil {
		return Session{}, err
	}
	u, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(in.Username))
	if errors.Is(err, core.ErrNotFound) {
		return Session{}, core.ErrUnauthorized
	}
	if err != nil {
		return Session{}, fmt.Errorf("get user: %w", err)
	}
	if err := s.hasher.Compare(u.PasswordHash, in.Password); err != nil {
		if errors.Is(err, core.ErrUnauthorized) {
			log.FromContext(ctx).WithComponent(log.ComponentAuth).WarnContext(ctx, "Login rejected",
				log.FieldUserID, u.ID,
				log.FieldOperation, log.OpLogin)
		}
		return Session{}, err
	}
	return s.session(u)
}

func (s *AuthService) User(ctx context.Context, userID int64) (core.User, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *AuthService) TokenTTL() int {
	return int(s.tokens.TTL().Seconds())
}

func (s *AuthService) session(u core.User) (Session, error) {
	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return Session{}, err
	}
	return Session{User: u, Token: token}, nil
}
