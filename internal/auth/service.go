// Package auth implements the login flow against the statically
// configured user list.
package auth

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/lucerolu/Dshb-dm/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	users map[string]User
}

// NewService constructs a Service from the provisioned user list.
func NewService(users []User) *Service {
	byName := make(map[string]User, len(users))
	for _, u := range users {
		byName[strings.ToLower(u.Name)] = u
	}
	return &Service{users: byName}
}

// ParseUsers reads comma separated "usuario:hash" pairs as carried by
// the DASH_USERS variable.
func ParseUsers(raw string) ([]User, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var users []User
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, hash, ok := strings.Cut(pair, ":")
		name = strings.TrimSpace(name)
		hash = strings.TrimSpace(hash)
		if !ok || name == "" || hash == "" {
			return nil, fmt.Errorf("auth: malformed user entry %q", pair)
		}
		if !strings.HasPrefix(hash, "$2") {
			return nil, fmt.Errorf("auth: user %q password is not a bcrypt hash", name)
		}
		users = append(users, User{Name: name, PasswordHash: hash})
	}
	return users, nil
}

// dummyHash keeps unknown-user lookups doing the same bcrypt work as
// real ones so usernames cannot be probed by timing.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Authenticate validates username/password credentials.
func (s *Service) Authenticate(ctx context.Context, name, password string) (*User, error) {
	user, ok := s.users[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return &user, nil
}
