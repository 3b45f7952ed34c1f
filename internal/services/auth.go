// Package services contains the auth state reconciler: the single owner of
// the current authentication status. It derives a coherent status from
// token presence, expiry, and server confirmation, and republishes every
// transition on a state-holding broadcast stream.
package services

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/common"
	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/logging"
	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/models"
	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/repository"
)

// User-facing error strings for determinate failure states.
const (
	msgSessionExpired = "Session expired"
	msgInitFailed     = "Authentication initialization failed"
)

// FullAppAccess is the access level that unlocks the whole application.
const FullAppAccess = "full"

// AuthService is the reconciler. All state mutation happens under one
// mutex; every transition publishes exactly one immutable snapshot.
type AuthService struct {
	repo   repository.AuthRepository
	stream *StateStream
	log    logging.Logger

	mu          sync.Mutex
	state       models.AuthState
	initialized bool
}

func NewAuthService(repo repository.AuthRepository, log logging.Logger) *AuthService {
	if log == nil {
		log = logging.NewNop()
	}
	initial := models.AuthState{Status: models.StatusUnknown}
	return &AuthService{
		repo:   repo,
		stream: NewStateStream(initial),
		state:  initial,
		log:    log,
	}
}

// Stream exposes the state broadcast for UI binding.
func (s *AuthService) Stream() *StateStream { return s.stream }

// CurrentState returns a copy of the latest snapshot.
func (s *AuthService) CurrentState() models.AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// setState must be called with s.mu held.
func (s *AuthService) setState(ctx context.Context, state models.AuthState) {
	s.log.Info(ctx, "auth state transition",
		"from", s.state.Status.String(), "to", state.Status.String())
	s.state = state
	s.stream.publish(state.Clone())
}

// Initialize restores the session on app start.
//
// Outcomes:
//   - no stored token: Unauthenticated, no error message.
//   - expired stored token: token cleared, Unauthenticated("Session expired").
//   - valid token, profile fetch succeeds: Authenticated with full profile.
//   - server rejects the token: token cleared, Unauthenticated("Session expired").
//   - network failure: status stays Unknown and the token is kept — the
//     credential is unverifiable, not proven invalid. The error is
//     returned so the caller can retry Initialize later.
//   - anything else: token cleared defensively,
//     Unauthenticated("Authentication initialization failed").
//
// Once a determinate status is reached, repeat calls are no-ops.
func (s *AuthService) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}

	has, err := s.repo.HasStoredToken(ctx)
	if err != nil {
		return s.initFailure(ctx, err)
	}
	if !has {
		s.initialized = true
		s.setState(ctx, models.AuthState{Status: models.StatusUnauthenticated})
		return nil
	}

	expired, err := s.repo.IsTokenExpired(ctx)
	if err != nil {
		return s.initFailure(ctx, err)
	}
	if expired {
		if err := s.repo.ClearExpiredToken(ctx); err != nil {
			s.log.Warn(ctx, "failed to clear expired token", "error", err)
		}
		s.initialized = true
		s.setState(ctx, models.AuthState{
			Status: models.StatusUnauthenticated,
			Error:  msgSessionExpired,
		})
		return nil
	}

	snapshot, err := s.repo.GetCurrentUser(ctx)
	switch {
	case err == nil:
		s.initialized = true
		s.setState(ctx, authenticatedState(snapshot))
		return nil

	case isAuthRejection(err):
		// Proven invalid. The repository has already cleared the
		// credential on 401; clear again for the ErrNoToken path.
		if clearErr := s.repo.ClearSession(ctx); clearErr != nil {
			s.log.Warn(ctx, "failed to clear rejected session", "error", clearErr)
		}
		s.initialized = true
		s.setState(ctx, models.AuthState{
			Status: models.StatusUnauthenticated,
			Error:  msgSessionExpired,
		})
		return nil

	case isUnverifiable(err):
		// Could not reach the server. Keep the token and stay Unknown.
		s.log.Warn(ctx, "session restore is unverifiable", "error", err)
		return err

	default:
		return s.initFailure(ctx, err)
	}
}

// initFailure is the defensive branch: unexpected errors clear the token
// and land in a determinate Unauthenticated state.
func (s *AuthService) initFailure(ctx context.Context, err error) error {
	s.log.Error(ctx, "initialization failed", "error", err)
	if clearErr := s.repo.ClearSession(ctx); clearErr != nil {
		s.log.Warn(ctx, "failed to clear session", "error", clearErr)
	}
	s.initialized = true
	s.setState(ctx, models.AuthState{
		Status: models.StatusUnauthenticated,
		Error:  msgInitFailed,
	})
	return nil
}

// SignUp registers a new account. All outcomes become a Result; no error
// escapes and no state transition happens on success (registration does
// not start a session). A password/confirmation mismatch is rejected
// before any network traffic.
func (s *AuthService) SignUp(ctx context.Context, req models.SignUpRequest) models.Result {
	if req.Password != req.ConfirmPassword {
		return models.Result{
			Error: "Passwords do not match",
			FieldErrors: map[string][]string{
				common.GeneralErrorKey: {"Passwords do not match"},
			},
		}
	}

	conf, err := s.repo.SignUp(ctx, req)
	if err != nil {
		return resultFromError(err)
	}
	return models.Result{Success: true, Detail: conf.Detail}
}

// Login authenticates and, on success, transitions to Authenticated with
// all profile fields populated atomically from the single response. On
// failure the state becomes Unauthenticated with the error message and any
// previous session is cleared.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) models.Result {
	payload, err := s.repo.Login(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		if clearErr := s.repo.ClearSession(ctx); clearErr != nil {
			s.log.Warn(ctx, "failed to clear session after login failure", "error", clearErr)
		}
		res := resultFromError(err)
		s.initialized = true
		s.setState(ctx, models.AuthState{
			Status: models.StatusUnauthenticated,
			Error:  res.Error,
		})
		return res
	}

	s.initialized = true
	s.setState(ctx, authenticatedState(&payload.ProfileSnapshot))
	return models.Result{Success: true}
}

// GetCurrentUser refreshes the profile from the server. Unlike SignUp and
// Login, errors propagate to the caller: profile fetches are guarded by an
// already-known auth state, so failure is exceptional. The state is left
// untouched on error so the UI can keep showing cached data.
func (s *AuthService) GetCurrentUser(ctx context.Context) (*models.ProfileSnapshot, error) {
	snapshot, err := s.repo.GetCurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.setState(ctx, authenticatedState(snapshot))
	return snapshot, nil
}

// Logout transitions to Unauthenticated unconditionally, clearing every
// profile field, regardless of the server call outcome. Calling it when
// already unauthenticated is harmless.
func (s *AuthService) Logout(ctx context.Context) error {
	err := s.repo.Logout(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.setState(ctx, models.AuthState{Status: models.StatusUnauthenticated})
	return err
}

// CachedProfile returns the last persisted snapshot, for painting
// provisional UI while the status is still Unknown.
func (s *AuthService) CachedProfile(ctx context.Context) (*models.ProfileSnapshot, error) {
	return s.repo.CachedProfile(ctx)
}

// Close releases the state stream. Safe to call more than once.
func (s *AuthService) Close() {
	s.stream.Close()
}

// --- predicates: pure reads over the current state, never panic ---

func (s *AuthService) HasRole(name string) bool {
	state := s.CurrentState()
	for _, role := range state.Roles {
		if role == name {
			return true
		}
	}
	return false
}

func (s *AuthService) IsProfileCompleteForRole(role string) bool {
	state := s.CurrentState()
	return state.ProfileComplete[role]
}

func (s *AuthService) HasFullAppAccess() bool {
	state := s.CurrentState()
	return state.AppAccess != nil && *state.AppAccess == FullAppAccess
}

func (s *AuthService) HasIncompleteRoles() bool {
	state := s.CurrentState()
	return len(state.IncompleteRoles) > 0
}

// --- helpers ---

// authenticatedState builds the Authenticated snapshot with every profile
// field populated from one server response, keeping the all-or-nothing
// invariant.
func authenticatedState(snapshot *models.ProfileSnapshot) models.AuthState {
	user := snapshot.User
	onboarding := snapshot.OnboardingComplete
	access := snapshot.AppAccess
	mode := snapshot.Mode
	viewType := snapshot.ViewType
	redirect := snapshot.RedirectTo

	profileComplete := snapshot.ProfileComplete
	if profileComplete == nil {
		profileComplete = map[string]bool{}
	}
	roles := snapshot.Roles
	if roles == nil {
		roles = []string{}
	}
	incomplete := snapshot.IncompleteRoles
	if incomplete == nil {
		incomplete = []string{}
	}
	available := snapshot.AvailableRoles
	if available == nil {
		available = []string{}
	}

	return models.AuthState{
		Status:             models.StatusAuthenticated,
		User:               &user,
		Roles:              roles,
		ProfileComplete:    profileComplete,
		OnboardingComplete: &onboarding,
		AppAccess:          &access,
		AvailableRoles:     available,
		IncompleteRoles:    incomplete,
		Mode:               &mode,
		ViewType:           &viewType,
		RedirectTo:         &redirect,
	}
}

// resultFromError folds a repository error into the UI-facing Result.
func resultFromError(err error) models.Result {
	var ve *common.ValidationError
	if errors.As(err, &ve) {
		fields := ve.FieldErrors
		if len(fields) == 0 {
			fields = map[string][]string{common.GeneralErrorKey: {ve.Message}}
		}
		return models.Result{Error: ve.Message, FieldErrors: fields}
	}

	var ae *common.APIError
	if errors.As(err, &ae) {
		return models.Result{
			Error: ae.Message,
			FieldErrors: map[string][]string{
				common.GeneralErrorKey: {ae.Message},
			},
		}
	}

	var te *common.TimeoutError
	if errors.As(err, &te) || errors.Is(err, common.ErrOffline) {
		return models.Result{
			Error: "Connection problem. Please try again.",
			FieldErrors: map[string][]string{
				common.GeneralErrorKey: {"Connection problem. Please try again."},
			},
		}
	}

	var ne *common.NetworkError
	if errors.As(err, &ne) {
		return models.Result{
			Error: "Connection problem. Please try again.",
			FieldErrors: map[string][]string{
				common.GeneralErrorKey: {"Connection problem. Please try again."},
			},
		}
	}

	return models.Result{
		Error: err.Error(),
		FieldErrors: map[string][]string{
			common.GeneralErrorKey: {err.Error()},
		},
	}
}

func isAuthRejection(err error) bool {
	if errors.Is(err, common.ErrNoToken) {
		return true
	}
	var ae *common.APIError
	return errors.As(err, &ae) && ae.StatusCode == http.StatusUnauthorized
}

// isUnverifiable reports connectivity-class failures where the stored
// credential may still be valid.
func isUnverifiable(err error) bool {
	if errors.Is(err, common.ErrOffline) {
		return true
	}
	var ne *common.NetworkError
	if errors.As(err, &ne) {
		return true
	}
	var te *common.TimeoutError
	return errors.As(err, &te)
}
