package utils // package utils provides helper functions for session tokens and hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and verifying signed tokens
)

// DefaultSessionTTL is how long a session token stays valid.
const DefaultSessionTTL = 24 * time.Hour

var (
	// ErrInvalidToken covers bad signatures, malformed tokens and
	// unexpected signing methods.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned once exp has passed.
	ErrTokenExpired = errors.New("token expired")
)

// SessionClaims is the payload of a session token.  userId and email
// identify the caller; iat and exp come from RegisteredClaims.
type SessionClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// SessionToken is a signed token with its expiry.
type SessionToken struct {
	Token string
	Exp   time.Time
}

// NewSessionToken builds and signs an HS256 JWT for a user.  A zero ttl
// falls back to DefaultSessionTTL.
func NewSessionToken(secret, userID, email string, ttl time.Duration, now time.Time) (SessionToken, error) {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	exp := now.UTC().Add(ttl)
	claims := SessionClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now.UTC()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

// ParseSessionToken verifies the signature and expiry of raw and returns
// its claims.  Only HMAC signing methods are accepted.
func ParseSessionToken(secret, raw string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !tok.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
