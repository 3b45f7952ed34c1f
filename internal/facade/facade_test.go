package facade

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/common"
	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/config"
	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/models"
)

func testConfig(t *testing.T, baseURL string) config.Config {
	t.Helper()
	var cfg config.Config
	cfg.LoadDefaults()
	cfg.BaseURL = baseURL
	cfg.StorePath = filepath.Join(t.TempDir(), "auth.db")
	cfg.StoreKey = "platform-keystore-secret"
	cfg.MaxRetries = 0
	cfg.RequestTimeout = 2 * time.Second
	return cfg
}

func TestOperationsBeforeConfigure(t *testing.T) {
	auth := New()
	ctx := context.Background()

	require.ErrorIs(t, auth.Initialize(ctx), common.ErrNotConfigured)
	require.ErrorIs(t, auth.Logout(ctx), common.ErrNotConfigured)

	_, err := auth.GetCurrentUser(ctx)
	require.ErrorIs(t, err, common.ErrNotConfigured)

	res := auth.Login(ctx, models.LoginRequest{Email: "a@b.com", Password: "x"})
	assert.False(t, res.Success)
	assert.Equal(t, common.ErrNotConfigured.Error(), res.Error)

	assert.Nil(t, auth.StateStream())
	assert.Equal(t, models.StatusUnknown, auth.CurrentState().Status)
	assert.False(t, auth.HasRole("Creator"))
	assert.False(t, auth.Configured())
}

func TestConfigureRejectsInvalidConfig(t *testing.T) {
	auth := New()

	cfg := testConfig(t, "https://api.example.com")
	cfg.BaseURL = ""
	require.Error(t, auth.Configure(cfg))
	assert.False(t, auth.Configured())
}

func TestConfigureIsOneShot(t *testing.T) {
	auth := New()
	cfg := testConfig(t, "https://api.example.com")

	require.NoError(t, auth.Configure(cfg))
	require.ErrorIs(t, auth.Configure(cfg), common.ErrAlreadyConfigured)

	require.NoError(t, auth.Reset(context.Background()))
	assert.False(t, auth.Configured())

	// after Reset the lifecycle starts over
	cfg.StorePath = filepath.Join(t.TempDir(), "auth2.db")
	require.NoError(t, auth.Configure(cfg))
	t.Cleanup(func() { _ = auth.Reset(context.Background()) })
}

func TestResetWithoutConfigureIsHarmless(t *testing.T) {
	auth := New()
	require.NoError(t, auth.Reset(context.Background()))
}

func TestLoginThroughFacade(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/login", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": "opaque-session-token",
			"user": map[string]any{
				"email":        "a@b.com",
				"display_name": "A",
				"is_active":    true,
			},
			"roles":               []string{"Creator"},
			"profile_complete":    map[string]bool{"Creator": true},
			"onboarding_complete": true,
			"app_access":          "full",
			"redirect_to":         "/home",
		})
	}))
	defer srv.Close()

	auth := New()
	require.NoError(t, auth.Configure(testConfig(t, srv.URL)))
	t.Cleanup(func() { _ = auth.Reset(context.Background()) })

	require.NoError(t, auth.Initialize(context.Background()))
	assert.Equal(t, models.StatusUnauthenticated, auth.CurrentState().Status)

	res := auth.Login(context.Background(), models.LoginRequest{Email: "a@b.com", Password: "secret"})
	require.True(t, res.Success, "login failed: %s", res.Error)

	st := auth.CurrentState()
	require.Equal(t, models.StatusAuthenticated, st.Status)
	assert.Equal(t, "a@b.com", st.User.Email)
	assert.True(t, auth.HasRole("Creator"))
	assert.True(t, auth.HasFullAppAccess())
	assert.True(t, auth.IsProfileCompleteForRole("Creator"))

	// the profile snapshot was persisted alongside the token
	snap, err := auth.CachedProfile(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "a@b.com", snap.User.Email)
}
