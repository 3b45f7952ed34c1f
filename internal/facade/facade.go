// Package facade is the single entry point of the authentication SDK. An
// Auth value is created unconfigured, armed exactly once with Configure,
// and torn back down with Reset. Every operation before Configure fails
// with common.ErrNotConfigured instead of panicking.
package facade

import (
	"context"
	"net/url"
	"os"
	"sync"

	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/common"
	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/config"
	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/logging"
	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/models"
	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/repository"
	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/services"
	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/store"
	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/transport"
)

// Auth owns the wired component graph: transport, secure store, repository
// and the state reconciler. The zero value is not usable; call New.
type Auth struct {
	mu      sync.Mutex
	cfg     *config.Config
	log     logging.Logger
	client  *transport.HTTPClient
	store   *store.SecureStore
	service *services.AuthService

	// construction seams for tests
	newClient func(cfg *config.Config, log logging.Logger) *transport.HTTPClient
	openStore func(cfg *config.Config) (*store.SecureStore, error)
}

func New() *Auth {
	return &Auth{
		newClient: defaultClient,
		openStore: defaultStore,
	}
}

func defaultClient(cfg *config.Config, log logging.Logger) *transport.HTTPClient {
	base := cfg.BaseURL
	if cfg.APIVersion != "" {
		if joined, err := url.JoinPath(cfg.BaseURL, cfg.APIVersion); err == nil {
			base = joined
		}
	}

	opts := []transport.Option{
		transport.WithTimeout(cfg.RequestTimeout),
		transport.WithRetries(cfg.MaxRetries, cfg.RetryBaseDelay),
		transport.WithDefaultHeaders(cfg.DefaultHeaders),
		transport.WithLogger(log),
	}
	// Probe the API host itself rather than some third-party beacon.
	if addr := probeAddr(cfg.BaseURL); addr != "" {
		opts = append(opts, transport.WithChecker(&transport.DialChecker{
			Addr:    addr,
			Timeout: cfg.ConnectTimeout,
		}))
	}
	return transport.New(base, opts...)
}

// probeAddr derives a host:port dial target from the API base URL.
func probeAddr(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Port() != "" {
		return u.Host
	}
	if u.Scheme == "http" {
		return u.Hostname() + ":80"
	}
	return u.Hostname() + ":443"
}

func defaultStore(cfg *config.Config) (*store.SecureStore, error) {
	return store.Open(cfg.StorePath, []byte(cfg.StoreKey))
}

// Configure validates cfg and wires the component graph. It may be called
// exactly once per lifecycle; a second call fails with
// common.ErrAlreadyConfigured until Reset tears the graph down.
func (a *Auth) Configure(cfg config.Config) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.service != nil {
		return common.ErrAlreadyConfigured
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logging.New(os.Stderr, cfg.LoggingEnabled)

	st, err := a.openStore(&cfg)
	if err != nil {
		return err
	}

	client := a.newClient(&cfg, log)
	repo := repository.NewAuthRepository(client, st, log)

	a.cfg = &cfg
	a.log = log
	a.client = client
	a.store = st
	a.service = services.NewAuthService(repo, log)
	return nil
}

// Reset closes the state stream and the store and returns the facade to
// the unconfigured state, ready for another Configure. Stored credentials
// are not touched; use Logout for that.
func (a *Auth) Reset(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.service == nil {
		return nil
	}

	a.service.Close()
	err := a.store.Close()

	a.cfg = nil
	a.client = nil
	a.store = nil
	a.service = nil
	return err
}

// Configured reports whether Configure has been called.
func (a *Auth) Configured() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.service != nil
}

func (a *Auth) svc() (*services.AuthService, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.service == nil {
		return nil, common.ErrNotConfigured
	}
	return a.service, nil
}

// Initialize restores a previous session, if any. Call once after
// Configure, before rendering auth-dependent UI.
func (a *Auth) Initialize(ctx context.Context) error {
	svc, err := a.svc()
	if err != nil {
		return err
	}
	return svc.Initialize(ctx)
}

func (a *Auth) SignUp(ctx context.Context, req models.SignUpRequest) models.Result {
	svc, err := a.svc()
	if err != nil {
		return notConfiguredResult()
	}
	return svc.SignUp(ctx, req)
}

func (a *Auth) Login(ctx context.Context, req models.LoginRequest) models.Result {
	svc, err := a.svc()
	if err != nil {
		return notConfiguredResult()
	}
	return svc.Login(ctx, req)
}

func (a *Auth) GetCurrentUser(ctx context.Context) (*models.ProfileSnapshot, error) {
	svc, err := a.svc()
	if err != nil {
		return nil, err
	}
	return svc.GetCurrentUser(ctx)
}

func (a *Auth) Logout(ctx context.Context) error {
	svc, err := a.svc()
	if err != nil {
		return err
	}
	return svc.Logout(ctx)
}

func (a *Auth) CachedProfile(ctx context.Context) (*models.ProfileSnapshot, error) {
	svc, err := a.svc()
	if err != nil {
		return nil, err
	}
	return svc.CachedProfile(ctx)
}

// StateStream exposes the auth state broadcast, or nil before Configure.
func (a *Auth) StateStream() *services.StateStream {
	svc, err := a.svc()
	if err != nil {
		return nil
	}
	return svc.Stream()
}

// CurrentState returns the latest snapshot. Before Configure it reports
// an Unknown status.
func (a *Auth) CurrentState() models.AuthState {
	svc, err := a.svc()
	if err != nil {
		return models.AuthState{Status: models.StatusUnknown}
	}
	return svc.CurrentState()
}

func (a *Auth) HasRole(name string) bool {
	svc, err := a.svc()
	if err != nil {
		return false
	}
	return svc.HasRole(name)
}

func (a *Auth) IsProfileCompleteForRole(role string) bool {
	svc, err := a.svc()
	if err != nil {
		return false
	}
	return svc.IsProfileCompleteForRole(role)
}

func (a *Auth) HasFullAppAccess() bool {
	svc, err := a.svc()
	if err != nil {
		return false
	}
	return svc.HasFullAppAccess()
}

func notConfiguredResult() models.Result {
	return models.Result{
		Error: common.ErrNotConfigured.Error(),
		FieldErrors: map[string][]string{
			common.GeneralErrorKey: {common.ErrNotConfigured.Error()},
		},
	}
}
