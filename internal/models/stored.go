package models

import "time"

// StoredCredential is the persisted bearer token record, owned exclusively
// by the credential store. ExpiresAt is derived from the token's embedded
// expiry claim when decodable; when nil, the store applies its maximum-age
// fallback relative to SavedAt.
type StoredCredential struct {
	Token     string     `json:"token"`
	SavedAt   time.Time  `json:"saved_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
