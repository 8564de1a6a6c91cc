package cryptox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	salt := []byte("0123456789abcdef")
	k1 := DeriveKey([]byte("passphrase"), salt)
	k2 := DeriveKey([]byte("passphrase"), salt)
	k3 := DeriveKey([]byte("other"), salt)

	assert.Len(t, k1, 32)
	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
}

func TestSealOpen_RoundTrip(t *testing.T) {
	key := DeriveKey([]byte("pw"), []byte("salt-salt-salt-s"))

	sealed, err := Seal("abcd efgh ijkl mnop", key)
	require.NoError(t, err)
	assert.True(t, IsSealed(sealed))
	assert.NotContains(t, sealed, "abcd")

	plain, err := Open(sealed, key)
	require.NoError(t, err)
	assert.Equal(t, "abcd efgh ijkl mnop", plain)
}

func TestSeal_EmptyStaysEmpty(t *testing.T) {
	key := DeriveKey([]byte("pw"), []byte("salt"))
	sealed, err := Seal("", key)
	require.NoError(t, err)
	assert.Empty(t, sealed)
}

func TestOpen_PlaintextPassesThrough(t *testing.T) {
	key := DeriveKey([]byte("pw"), []byte("salt"))
	plain, err := Open("legacy-token", key)
	require.NoError(t, err)
	assert.Equal(t, "legacy-token", plain)
}

func TestOpen_WrongKey(t *testing.T) {
	sealed, err := Seal("secret", DeriveKey([]byte("a"), []byte("salt")))
	require.NoError(t, err)

	_, err = Open(sealed, DeriveKey([]byte("b"), []byte("salt")))
	assert.Error(t, err)
}

func TestOpen_Malformed(t *testing.T) {
	key := DeriveKey([]byte("pw"), []byte("salt"))

	_, err := Open(sealedPrefix+"!!!", key)
	assert.ErrorIs(t, err, ErrMalformedSealed)

	_, err = Open(sealedPrefix+"AA==", key)
	assert.ErrorIs(t, err, ErrMalformedSealed)
}
