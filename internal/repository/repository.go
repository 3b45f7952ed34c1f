// Package repository exposes the domain operations of the auth API and
// keeps the local credential store consistent with the last known server
// response.
package repository

import (
	"context"

	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/models"
)

// AuthRepository is the contract consumed by the state reconciler.
//
// Each mutating method updates the credential store as a side effect of
// success; Logout clears local state even when the server call fails.
type AuthRepository interface {
	// SignUp registers a new account. No token is stored: registration
	// does not start a session in this API shape.
	SignUp(ctx context.Context, req models.SignUpRequest) (*models.SignUpConfirmation, error)

	// Login exchanges credentials for a token and a profile payload, and
	// persists both atomically.
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginPayload, error)

	// GetCurrentUser fetches the authoritative profile. Requires a stored,
	// non-expired token; fails with common.ErrNoToken otherwise. A 401
	// verdict clears the local credential before the error is returned.
	GetCurrentUser(ctx context.Context) (*models.ProfileSnapshot, error)

	// Logout notifies the server best-effort and always clears the local
	// token and profile afterward.
	Logout(ctx context.Context) error

	// ClearSession wipes the local token and profile without contacting
	// the server.
	ClearSession(ctx context.Context) error

	HasStoredToken(ctx context.Context) (bool, error)
	IsTokenExpired(ctx context.Context) (bool, error)
	ClearExpiredToken(ctx context.Context) error

	// CachedProfile returns the last persisted snapshot, for provisional
	// UI painting before a fresh fetch resolves.
	CachedProfile(ctx context.Context) (*models.ProfileSnapshot, error)
}
