package store

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/models"
)

var dbSeq int

func setupStore(t *testing.T, opts ...Option) *SecureStore {
	t.Helper()
	dbSeq++
	dsn := fmt.Sprintf("file:securestore%d?mode=memory&cache=shared", dbSeq)
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)

	s, err := NewWithDB(db, []byte("test-passphrase"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func signedTestToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{}
	if !expiresAt.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)
	return tok
}

func TestEmptyStoreReadsAreSafe(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	tok, err := s.GetToken(ctx)
	require.NoError(t, err)
	require.Empty(t, tok)

	has, err := s.HasValidToken(ctx)
	require.NoError(t, err)
	require.False(t, has)

	expired, err := s.IsTokenExpired(ctx)
	require.NoError(t, err)
	require.True(t, expired)

	profile, err := s.GetProfile(ctx)
	require.NoError(t, err)
	require.Nil(t, profile)

	cred, err := s.Credential(ctx)
	require.NoError(t, err)
	require.Nil(t, cred)

	require.NoError(t, s.ClearToken(ctx))
	require.NoError(t, s.ClearProfile(ctx))
	require.NoError(t, s.ClearAll(ctx))
}

func TestSaveTokenRoundTrip(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	expAt := time.Now().Add(time.Hour)
	tok := signedTestToken(t, expAt)
	require.NoError(t, s.SaveToken(ctx, tok))

	got, err := s.GetToken(ctx)
	require.NoError(t, err)
	require.Equal(t, tok, got)

	cred, err := s.Credential(ctx)
	require.NoError(t, err)
	require.NotNil(t, cred)
	require.NotNil(t, cred.ExpiresAt)
	require.Equal(t, expAt.Unix(), cred.ExpiresAt.Unix())
	require.False(t, cred.SavedAt.IsZero())

	has, err := s.HasValidToken(ctx)
	require.NoError(t, err)
	require.True(t, has)
}

func TestTokenValuesAreEncryptedAtRest(t *testing.T) {
	dbSeq++
	dsn := fmt.Sprintf("file:securestore%d?mode=memory&cache=shared", dbSeq)
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)

	s, err := NewWithDB(db, []byte("test-passphrase"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	require.NoError(t, s.SaveToken(ctx, "plaintext-token"))

	var stored []byte
	require.NoError(t, db.QueryRow(`SELECT value FROM secure_items WHERE key = 'auth_token'`).Scan(&stored))
	require.NotContains(t, string(stored), "plaintext-token")
}

func TestIsTokenExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := setupStore(t, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	// expiry claim one hour in the future
	require.NoError(t, s.SaveToken(ctx, signedTestToken(t, now.Add(time.Hour))))
	expired, err := s.IsTokenExpired(ctx)
	require.NoError(t, err)
	require.False(t, expired)

	// expiry claim one hour in the past
	require.NoError(t, s.SaveToken(ctx, signedTestToken(t, now.Add(-time.Hour))))
	expired, err = s.IsTokenExpired(ctx)
	require.NoError(t, err)
	require.True(t, expired)

	// no claim: fresh within the fallback window
	require.NoError(t, s.SaveToken(ctx, signedTestToken(t, time.Time{})))
	expired, err = s.IsTokenExpired(ctx)
	require.NoError(t, err)
	require.False(t, expired)
}

// Tokens that fail to decode are always expired, no matter how fresh.
func TestIsTokenExpiredFailClosed(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	for _, tok := range []string{"garbage", "a.b", "x.y.z"} {
		require.NoError(t, s.SaveToken(ctx, tok))
		expired, err := s.IsTokenExpired(ctx)
		require.NoError(t, err)
		require.True(t, expired, "token %q must be treated as expired", tok)
	}
}

func TestSaveSessionIsAtomicAndClearAllWipes(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	snapshot := &models.ProfileSnapshot{
		User:            models.User{Email: "a@b.com", DisplayName: "Alice"},
		Roles:           []string{"Creator"},
		ProfileComplete: map[string]bool{"creator": true},
		AppAccess:       "full",
	}
	require.NoError(t, s.SaveSession(ctx, signedTestToken(t, time.Now().Add(time.Hour)), snapshot))

	tok, err := s.GetToken(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	got, err := s.GetProfile(ctx)
	require.NoError(t, err)
	require.Equal(t, snapshot, got)

	require.NoError(t, s.ClearAll(ctx))

	tok, err = s.GetToken(ctx)
	require.NoError(t, err)
	require.Empty(t, tok)

	got, err = s.GetProfile(ctx)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestClearTokenLeavesProfile(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveToken(ctx, "tok"))
	require.NoError(t, s.SaveProfile(ctx, &models.ProfileSnapshot{AppAccess: "full"}))
	require.NoError(t, s.ClearToken(ctx))

	tok, err := s.GetToken(ctx)
	require.NoError(t, err)
	require.Empty(t, tok)

	profile, err := s.GetProfile(ctx)
	require.NoError(t, err)
	require.NotNil(t, profile)
}

func TestInstallIDIsStable(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	first, err := s.InstallID(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := s.InstallID(ctx)
	require.NoError(t, err)
	require.Equal(t, first, second)

	// ClearAll does not wipe the install identity.
	require.NoError(t, s.ClearAll(ctx))
	third, err := s.InstallID(ctx)
	require.NoError(t, err)
	require.Equal(t, first, third)
}

func TestLastWriterWinsOnToken(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveToken(ctx, "first"))
	require.NoError(t, s.SaveToken(ctx, "second"))

	tok, err := s.GetToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "second", tok)
}
