package core

import (
	"net/mail"
	"strings"
)

// NewUser is the registration payload.
type NewUser struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (u NewUser) Validate() error {
	v := &ValidationError{}
	v.minLen("username", u.Username, 3)
	if len(u.Password) < 6 {
		v.Add("password", "must be at least 6 characters")
	} else if len(u.Password) > 72 {
		// bcrypt ignores anything past 72 bytes
		v.Add("password", "must be at most 72 bytes")
	}
	if !validEmail(u.Email) {
		v.Add("email", "must be a valid email address")
	}
	v.minLen("firstName", u.FirstName, 2)
	return v.Err()
}

// User builds the record to persist. The hash is computed by the caller.
func (u NewUser) User(passwordHash string) User {
	return User{
		Username:     strings.TrimSpace(u.Username),
		Email:        strings.ToLower(strings.TrimSpace(u.Email)),
		PasswordHash: passwordHash,
		FirstName:    strings.TrimSpace(u.FirstName),
		LastName:     strings.TrimSpace(u.LastName),
	}
}

// Credentials is the login payload.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c Credentials) Validate() error {
	v := &ValidationError{}
	v.minLen("username", c.Username, 1)
	if c.Password == "" {
		v.Add("password", "is required")
	}
	return v.Err()
}

func validEmail(s string) bool {
	s = strings.TrimSpace(s)
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
