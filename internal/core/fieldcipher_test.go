// fieldcipher_test.go

package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestFieldCipherRoundTrip(t *testing.T) {
	cipher, err := NewFieldCipher(testKeyHex)
	require.NoError(t, err)
	require.True(t, cipher.Enabled())

	envelope, err := cipher.Encrypt("jane@example.com")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(envelope, "enc:"))
	assert.Len(t, strings.Split(envelope, ":"), 4)
	assert.True(t, IsEnvelope(envelope))

	assert.Equal(t, "jane@example.com", cipher.Decrypt(envelope))
}

func TestFieldCipherNonceUniqueness(t *testing.T) {
	cipher, err := NewFieldCipher(testKeyHex)
	require.NoError(t, err)

	first, err := cipher.Encrypt("same value")
	require.NoError(t, err)
	second, err := cipher.Encrypt("same value")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, cipher.Decrypt(first), cipher.Decrypt(second))
}

func TestFieldCipherPassthroughWithoutKey(t *testing.T) {
	cipher, err := NewFieldCipher("")
	require.NoError(t, err)
	require.False(t, cipher.Enabled())

	out, err := cipher.Encrypt("plain value")
	require.NoError(t, err)
	assert.Equal(t, "plain value", out)
	assert.Equal(t, "plain value", cipher.Decrypt("plain value"))
}

func TestFieldCipherDecryptNeverFails(t *testing.T) {
	cipher, err := NewFieldCipher(testKeyHex)
	require.NoError(t, err)

	cases := []string{
		"",
		"legacy plaintext",
		"enc:not-base64:::",
		"enc:only-two-parts",
		"enc:QUFB:QUFB:QUFB",
	}
	for _, in := range cases {
		assert.Equal(t, in, cipher.Decrypt(in))
	}
}

func TestFieldCipherTamperedEnvelope(t *testing.T) {
	cipher, err := NewFieldCipher(testKeyHex)
	require.NoError(t, err)

	envelope, err := cipher.Encrypt("secret")
	require.NoError(t, err)

	parts := strings.Split(envelope, ":")
	require.Len(t, parts, 4)
	parts[3] = parts[3][:len(parts[3])-2] + "zz"
	tampered := strings.Join(parts, ":")

	// Authentication failure falls back to returning the input.
	assert.Equal(t, tampered, cipher.Decrypt(tampered))
}

func TestFieldCipherRejectsBadKey(t *testing.T) {
	_, err := NewFieldCipher("too-short")
	assert.Error(t, err)

	_, err = NewFieldCipher(strings.Repeat("zz", 32))
	assert.Error(t, err)
}

func TestHashIndexDeterministic(t *testing.T) {
	cipher, err := NewFieldCipher(testKeyHex)
	require.NoError(t, err)

	a := cipher.HashIndex("jane@example.com")
	b := cipher.HashIndex("jane@example.com")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	assert.NotEqual(t, a, cipher.HashIndex("john@example.com"))
	assert.Empty(t, cipher.HashIndex(""))
}

func TestHashIndexIndependentOfKey(t *testing.T) {
	withKey, err := NewFieldCipher(testKeyHex)
	require.NoError(t, err)
	withoutKey, err := NewFieldCipher("")
	require.NoError(t, err)

	assert.Equal(t,
		withKey.HashIndex("jane@example.com"),
		withoutKey.HashIndex("jane@example.com"),
	)
}
