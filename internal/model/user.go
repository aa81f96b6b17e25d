package model

import (
	"strings"
	"time"
)

// User represents an account holder.  Email is always stored trimmed and
// lower-cased so that uniqueness checks are case-insensitive.  The
// password is never stored in plain form; only the bcrypt hash is kept.
//
// Fields:
//
//	ID           – opaque record identifier assigned by the store.
//	FirstName    – given name (trimmed).
//	LastName     – family name (trimmed).
//	Email        – unique, lower-cased email address.
//	PasswordHash – bcrypt hash of the password.
//	IsActive     – deactivated accounts cannot sign in.
//	LastLogin    – time of the last successful sign-in; zero until then.
//	CreatedAt    – creation timestamp.
//	UpdatedAt    – last modification timestamp.
type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	IsActive     bool
	LastLogin    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserProfile is the client-facing shape of a user.  It deliberately has
// no password field.
type UserProfile struct {
	ID        string     `json:"id"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	FullName  string     `json:"fullName"`
	Email     string     `json:"email"`
	IsActive  bool       `json:"isActive"`
	LastLogin *time.Time `json:"lastLogin"` // null before the first sign-in
	CreatedAt time.Time  `json:"createdAt"`
}

// FullName joins first and last name.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Profile projects the user into its public representation.
func (u User) Profile() UserProfile {
	p := UserProfile{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		Email:     u.Email,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
	if !u.LastLogin.IsZero() {
		at := u.LastLogin
		p.LastLogin = &at
	}
	return p
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
