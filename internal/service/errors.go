// Package service holds the account, friend and location operations.  It
// sits between the HTTP handlers and the repository adapters: handlers
// pass in already-validated input and receive either a model value or
// one of the sentinel errors below.  Repository tags never escape this
// package.
package service

import "errors"

var (
	// Session validation.
	ErrUnauthenticated = errors.New("access token required")
	ErrInvalidToken    = errors.New("invalid token")
	ErrTokenExpired    = errors.New("token expired")
	ErrUserNotFound    = errors.New("user not found")

	// Accounts.
	ErrDuplicateEmail     = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDeactivated = errors.New("account is deactivated")
	ErrEmailTaken         = errors.New("email already in use")
	ErrWrongPassword      = errors.New("current password is incorrect")

	// Friends and locations.
	ErrDuplicateFriend    = errors.New("friend with this email already exists")
	ErrFriendNotFound     = errors.New("friend not found")
	ErrLocationNotFound   = errors.New("location not found")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrInvalidStatus      = errors.New("invalid status")
)
