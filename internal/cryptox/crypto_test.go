package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSealOpenRoundTrip(t *testing.T) {
	key := DeriveKey([]byte("passphrase"), []byte("salt-0123456789"))
	plaintext := []byte(`{"token":"abc"}`)

	sealed, err := Seal(plaintext, key)
	require.NoError(t, err)
	require.NotEqual(t, plaintext, sealed)

	opened, err := Open(sealed, key)
	require.NoError(t, err)
	require.Equal(t, plaintext, opened)
}

func TestOpenWrongKeyFails(t *testing.T) {
	key := DeriveKey([]byte("passphrase"), []byte("salt-0123456789"))
	other := DeriveKey([]byte("different"), []byte("salt-0123456789"))

	sealed, err := Seal([]byte("secret"), key)
	require.NoError(t, err)

	_, err = Open(sealed, other)
	require.Error(t, err)
}

func TestOpenTruncatedBlob(t *testing.T) {
	key := DeriveKey([]byte("p"), []byte("s"))
	_, err := Open([]byte{1, 2, 3}, key)
	require.ErrorIs(t, err, ErrCiphertextTooShort)
}

func TestDeriveKeyDeterministic(t *testing.T) {
	a := DeriveKey([]byte("p"), []byte("salt-a"))
	b := DeriveKey([]byte("p"), []byte("salt-a"))
	c := DeriveKey([]byte("p"), []byte("salt-b"))

	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
	require.Len(t, a, 32)
}

func TestSealUniqueNonces(t *testing.T) {
	key := DeriveKey([]byte("p"), []byte("s"))
	one, err := Seal([]byte("same"), key)
	require.NoError(t, err)
	two, err := Seal([]byte("same"), key)
	require.NoError(t, err)
	require.NotEqual(t, one, two)
}

func TestWipe(t *testing.T) {
	b := []byte("secret")
	Wipe(b)
	for _, v := range b {
		require.Zero(t, v)
	}
	Wipe(nil) // must not panic
}
