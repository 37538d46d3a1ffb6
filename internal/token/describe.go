package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Info is what can be read from a token without the backend's signing key.
type Info struct {
	// Opaque is true when the token is not a JWT and nothing could be read.
	Opaque    bool
	Subject   string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Describe inspects a JWT-shaped token without verifying its signature. The
// result is informational only; the backend stays the authority on validity.
func Describe(tok string) Info {
	if tok == "" {
		return Info{Opaque: true}
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return Info{Opaque: true}
	}

	info := Info{
		Subject: claims.Subject,
		Issuer:  claims.Issuer,
	}
	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info
}

// Expired reports whether the token carries an expiry that is before now.
func (i Info) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && i.ExpiresAt.Before(now)
}
