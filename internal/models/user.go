// Package models defines the value objects of the authentication SDK:
// the user identity, the authentication state snapshot, the persisted
// credential records, and the request/response DTOs of the auth API.
package models

import "time"

// User is the identity half of a profile. Immutable value; equality is
// structural.
type User struct {
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	IsActive    bool      `json:"is_active"`
	IsVerified  bool      `json:"is_verified"`
	IsNew       bool      `json:"is_new"`
	DateJoined  time.Time `json:"date_joined"`
}
