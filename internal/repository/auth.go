package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/common"
	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/logging"
	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/models"
	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/store"
	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/transport"
)

// API endpoints, relative to the configured base URL and version.
const (
	registerEndpoint = "register"
	loginEndpoint    = "login"
	meEndpoint       = "me"
	logoutEndpoint   = "logout"
)

type authRepository struct {
	client transport.Client
	store  *store.SecureStore
	log    logging.Logger
}

// NewAuthRepository builds the AuthRepository over the given transport and
// store.
func NewAuthRepository(client transport.Client, st *store.SecureStore, log logging.Logger) AuthRepository {
	if log == nil {
		log = logging.NewNop()
	}
	return &authRepository{client: client, store: st, log: log}
}

func (r *authRepository) SignUp(ctx context.Context, req models.SignUpRequest) (*models.SignUpConfirmation, error) {
	resp, err := r.client.Post(ctx, registerEndpoint, req)
	if err != nil {
		return nil, err
	}
	return decodeInto[models.SignUpConfirmation](resp)
}

func (r *authRepository) Login(ctx context.Context, req models.LoginRequest) (*models.LoginPayload, error) {
	resp, err := r.client.Post(ctx, loginEndpoint, req)
	if err != nil {
		return nil, err
	}

	payload, err := decodeInto[models.LoginPayload](resp)
	if err != nil {
		return nil, err
	}

	r.client.SetToken(payload.Token)
	if err := r.store.SaveSession(ctx, payload.Token, &payload.ProfileSnapshot); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	r.log.Info(ctx, "login succeeded", "email", payload.User.Email)
	return payload, nil
}

func (r *authRepository) GetCurrentUser(ctx context.Context) (*models.ProfileSnapshot, error) {
	tok, err := r.store.GetToken(ctx)
	if err != nil {
		return nil, err
	}
	if tok == "" {
		return nil, common.ErrNoToken
	}

	expired, err := r.store.IsTokenExpired(ctx)
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, fmt.Errorf("stored token is expired: %w", common.ErrNoToken)
	}

	r.client.SetToken(tok)
	resp, err := r.client.Get(ctx, meEndpoint)
	if err != nil {
		if isAuthRejection(err) {
			// The server has declared the credential invalid; keeping it
			// would only repeat the failure.
			if clearErr := r.ClearSession(ctx); clearErr != nil {
				r.log.Warn(ctx, "failed to clear rejected credential", "error", clearErr)
			}
		}
		return nil, err
	}

	snapshot, err := decodeInto[models.ProfileSnapshot](resp)
	if err != nil {
		return nil, err
	}

	if err := r.store.SaveProfile(ctx, snapshot); err != nil {
		r.log.Warn(ctx, "failed to refresh profile snapshot", "error", err)
	}
	return snapshot, nil
}

func (r *authRepository) Logout(ctx context.Context) error {
	if _, err := r.client.Post(ctx, logoutEndpoint, map[string]any{}); err != nil {
		// Best effort only. Local invalidation below is what security
		// depends on.
		r.log.Warn(ctx, "server logout failed", "error", err)
	}
	return r.ClearSession(ctx)
}

func (r *authRepository) ClearSession(ctx context.Context) error {
	r.client.ClearToken()
	return r.store.ClearAll(ctx)
}

func (r *authRepository) HasStoredToken(ctx context.Context) (bool, error) {
	return r.store.HasValidToken(ctx)
}

func (r *authRepository) IsTokenExpired(ctx context.Context) (bool, error) {
	return r.store.IsTokenExpired(ctx)
}

func (r *authRepository) ClearExpiredToken(ctx context.Context) error {
	return r.store.ClearToken(ctx)
}

func (r *authRepository) CachedProfile(ctx context.Context) (*models.ProfileSnapshot, error) {
	return r.store.GetProfile(ctx)
}

// isAuthRejection reports whether the server definitively rejected the
// credential, as opposed to being unreachable.
func isAuthRejection(err error) bool {
	if errors.Is(err, common.ErrNoToken) {
		return true
	}
	var apiErr *common.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// decodeInto converts the loosely typed transport payload into a DTO via a
// JSON round trip.
func decodeInto[T any](payload map[string]any) (*T, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &common.NetworkError{Message: "unexpected response shape", Err: err}
	}
	return &out, nil
}
