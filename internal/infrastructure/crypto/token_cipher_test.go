package crypto

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestTokenCipher_RoundTrip(t *testing.T) {
	c, err := NewTokenCipher(testKey)
	require.NoError(t, err)
	aad := []byte("user-1:gmail")

	sealed, err := c.Encrypt([]byte("ya29.access-token"), aad)
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "access-token")

	plain, err := c.Decrypt(sealed, aad)
	require.NoError(t, err)
	assert.Equal(t, "ya29.access-token", string(plain))
}

func TestTokenCipher_NonceIsRandom(t *testing.T) {
	c, err := NewTokenCipher(testKey)
	require.NoError(t, err)

	a, err := c.Encrypt([]byte("same"), nil)
	require.NoError(t, err)
	b, err := c.Encrypt([]byte("same"), nil)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestTokenCipher_RejectsTampering(t *testing.T) {
	c, err := NewTokenCipher(testKey)
	require.NoError(t, err)
	sealed, err := c.Encrypt([]byte("refresh"), []byte("owner"))
	require.NoError(t, err)

	_, err = c.Decrypt(sealed, []byte("someone-else"))
	assert.ErrorIs(t, err, ErrDecryptFailed)

	flipped := append([]byte(nil), sealed...)
	flipped[len(flipped)-1] ^= 0x01
	_, err = c.Decrypt(flipped, []byte("owner"))
	assert.ErrorIs(t, err, ErrDecryptFailed)

	_, err = c.Decrypt(sealed[:10], []byte("owner"))
	assert.ErrorIs(t, err, ErrMalformed)

	other, err := NewTokenCipher(strings.Repeat("z", 32))
	require.NoError(t, err)
	_, err = other.Decrypt(sealed, []byte("owner"))
	assert.ErrorIs(t, err, ErrDecryptFailed)
}

func TestTokenCipher_Empty(t *testing.T) {
	c, err := NewTokenCipher(testKey)
	require.NoError(t, err)

	sealed, err := c.Encrypt(nil, nil)
	require.NoError(t, err)
	assert.Nil(t, sealed)

	plain, err := c.Decrypt(nil, nil)
	require.NoError(t, err)
	assert.Nil(t, plain)
}

func TestNewTokenCipher_Keys(t *testing.T) {
	_, err := NewTokenCipher("  ")
	assert.ErrorIs(t, err, ErrEmptyKey)

	_, err = NewTokenCipher("short")
	assert.ErrorIs(t, err, ErrShortKey)

	raw := []byte(testKey)
	encoded := base64.StdEncoding.EncodeToString(raw)
	fromBase64, err := NewTokenCipher(encoded)
	require.NoError(t, err)
	fromRaw, err := NewTokenCipher(testKey)
	require.NoError(t, err)

	sealed, err := fromRaw.Encrypt([]byte("x"), nil)
	require.NoError(t, err)
	plain, err := fromBase64.Decrypt(sealed, nil)
	require.NoError(t, err, "base64 and raw forms of the same key derive the same cipher")
	assert.Equal(t, "x", string(plain))
}
