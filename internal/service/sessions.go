package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/allclear/internal/model"
	"github.com/iliyamo/allclear/internal/repository"
	"github.com/iliyamo/allclear/internal/utils"
)

// Sessions issues and validates stateless bearer tokens.  Nothing is
// stored server-side; every Validate call re-reads the user.
type Sessions struct {
	secret string
	ttl    time.Duration
	users  repository.UserStore
	now    func() time.Time
}

// NewSessions builds a Sessions.  An empty secret is a programming error:
// the config layer refuses to start without one.
func NewSessions(secret string, ttl time.Duration, users repository.UserStore, now func() time.Time) *Sessions {
	if secret == "" {
		panic("empty session secret passed to NewSessions")
	}
	if now == nil {
		now = time.Now
	}
	return &Sessions{secret: secret, ttl: ttl, users: users, now: now}
}

// Issue signs a token for the user valid for the configured TTL.
func (s *Sessions) Issue(userID, email string) (utils.SessionToken, error) {
	return utils.NewSessionToken(s.secret, userID, email, s.ttl, s.now())
}

// Validate resolves a raw bearer token to an active user.
func (s *Sessions) Validate(ctx context.Context, raw string) (model.User, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.User{}, ErrUnauthenticated
	}
	claims, err := utils.ParseSessionToken(s.secret, raw)
	switch {
	case errors.Is(err, utils.ErrTokenExpired):
		return model.User{}, ErrTokenExpired
	case err != nil:
		return model.User{}, ErrInvalidToken
	}
	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}
	if !u.IsActive {
		return model.User{}, ErrUserNotFound
	}
	return u, nil
}
