package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/allclear/internal/model"
	"github.com/iliyamo/allclear/internal/repository"
	"github.com/iliyamo/allclear/internal/utils"
)

// SignUpInput carries a validated sign-up request.
type SignUpInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// ProfileUpdate is a partial update; nil fields are left unchanged.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
}

// AuthResult is returned by sign-up and sign-in.
type AuthResult struct {
	User  model.User
	Token utils.SessionToken
}

// Accounts implements the credential store operations.
type Accounts struct {
	store      repository.Store
	sessions   *Sessions
	bcryptCost int
	now        func() time.Time
	log        zerolog.Logger
}

// NewAccounts wires Accounts.  now may be nil.
func NewAccounts(store repository.Store, sessions *Sessions, bcryptCost int, now func() time.Time, log zerolog.Logger) *Accounts {
	if now == nil {
		now = time.Now
	}
	return &Accounts{store: store, sessions: sessions, bcryptCost: bcryptCost, now: now, log: log}
}

// SignUp creates an account and issues a session token.  The email is
// compared case-insensitively; the store's unique index is the final
// arbiter when two sign-ups race.
func (a *Accounts) SignUp(ctx context.Context, in SignUpInput) (AuthResult, error) {
	email := model.NormalizeEmail(in.Email)
	if _, err := a.store.Users().GetByEmail(ctx, email); err == nil {
		return AuthResult{}, ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrNotFound) {
		return AuthResult{}, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := utils.HashPassword(in.Password, a.bcryptCost)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}
	now := a.now().UTC()
	u := model.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.store.Users().Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return AuthResult{}, ErrDuplicateEmail
		}
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}
	tok, err := a.sessions.Issue(u.ID, u.Email)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}
	return AuthResult{User: u, Token: tok}, nil
}

// SignIn checks credentials.  Unknown email and wrong password produce
// the same error so callers cannot probe for accounts.
func (a *Accounts) SignIn(ctx context.Context, email, password string) (AuthResult, error) {
	u, err := a.store.Users().GetByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("lookup email: %w", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return AuthResult{}, ErrInvalidCredentials
	}
	if !u.IsActive {
		return AuthResult{}, ErrAccountDeactivated
	}

	u.LastLogin = a.now().UTC()
	if err := a.store.Users().TouchLogin(ctx, u.ID, u.LastLogin); err != nil {
		return AuthResult{}, fmt.Errorf("record login: %w", err)
	}
	tok, err := a.sessions.Issue(u.ID, u.Email)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}
	return AuthResult{User: u, Token: tok}, nil
}

// Profile reloads the user.
func (a *Accounts) Profile(ctx context.Context, userID string) (model.User, error) {
	u, err := a.store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}
	return u, nil
}

// UpdateProfile applies the supplied fields only.
func (a *Accounts) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (model.User, error) {
	u, err := a.Profile(ctx, userID)
	if err != nil {
		return model.User{}, err
	}
	if upd.Email != nil {
		email := model.NormalizeEmail(*upd.Email)
		if email != "" && email != u.Email {
			other, err := a.store.Users().GetByEmail(ctx, email)
			switch {
			case err == nil && other.ID != u.ID:
				return model.User{}, ErrEmailTaken
			case err != nil && !errors.Is(err, repository.ErrNotFound):
				return model.User{}, fmt.Errorf("lookup email: %w", err)
			}
			u.Email = email
		}
	}
	if upd.FirstName != nil {
		if v := strings.TrimSpace(*upd.FirstName); v != "" {
			u.FirstName = v
		}
	}
	if upd.LastName != nil {
		if v := strings.TrimSpace(*upd.LastName); v != "" {
			u.LastName = v
		}
	}
	u.UpdatedAt = a.now().UTC()

	if err := a.store.Users().Update(ctx, u); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return model.User{}, ErrEmailTaken
		case errors.Is(err, repository.ErrNotFound):
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

// ChangePassword replaces the hash after verifying the current password.
func (a *Accounts) ChangePassword(ctx context.Context, userID, current, next string) error {
	u, err := a.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if !utils.VerifyPassword(u.PasswordHash, current) {
		return ErrWrongPassword
	}
	hash, err := utils.HashPassword(next, a.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := a.store.Users().UpdatePassword(ctx, userID, hash, a.now().UTC()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// DeleteAccount removes the user, then purges the user's friends and
// locations.  The account removal is what the caller observes; a failed
// purge is logged and leaves unreachable rows behind.
func (a *Accounts) DeleteAccount(ctx context.Context, userID string) error {
	if err := a.store.Users().Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	if err := a.store.Friends().DeleteAllForOwner(ctx, userID); err != nil {
		a.log.Error().Err(err).Str("user_id", userID).Msg("purge friends after account deletion")
	}
	if err := a.store.Locations().DeleteAllForOwner(ctx, userID); err != nil {
		a.log.Error().Err(err).Str("user_id", userID).Msg("purge locations after account deletion")
	}
	return nil
}
