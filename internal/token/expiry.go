// Package token implements the expiry policy for stored bearer tokens.
//
// The policy is fail closed: a token that cannot be decoded is always
// treated as expired. A token that decodes but carries no expiry claim
// falls back to a maximum-age window relative to when it was saved.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultMaxAge is the fallback window applied to tokens without a
// decodable expiry claim.
const DefaultMaxAge = 24 * time.Hour

// Expiry is the decoded expiry claim, when one exists.
type Expiry struct {
	At time.Time
	OK bool
}

// TryDecodeExpiry parses the token without signature verification (the
// client has no key material) and extracts the exp claim. A malformed
// token returns an error; a well-formed token without an exp claim
// returns Expiry{OK: false} and no error.
func TryDecodeExpiry(tok string) (Expiry, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err != nil {
		return Expiry{}, err
	}
	if claims.ExpiresAt == nil {
		return Expiry{}, nil
	}
	return Expiry{At: claims.ExpiresAt.Time, OK: true}, nil
}

// IsExpired applies the expiry policy to an already-decoded claim:
// a present claim is compared against now; an absent claim falls back to
// the savedAt+maxAge window. A zero savedAt means the save time is
// unknown and the token is treated as expired.
func IsExpired(exp Expiry, savedAt, now time.Time, maxAge time.Duration) bool {
	if exp.OK {
		return !exp.At.After(now)
	}
	if savedAt.IsZero() {
		return true
	}
	return now.Sub(savedAt) > maxAge
}

// Expired composes TryDecodeExpiry and IsExpired, mapping a decode failure
// to expired.
func Expired(tok string, savedAt, now time.Time, maxAge time.Duration) bool {
	exp, err := TryDecodeExpiry(tok)
	if err != nil {
		return true
	}
	return IsExpired(exp, savedAt, now, maxAge)
}
