// security_test.go

package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Password1!")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
	assert.True(t, VerifyPassword("Password1!", hash))
	assert.False(t, VerifyPassword("password1!", hash))
	assert.False(t, VerifyPassword("", hash))
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	first, err := HashPassword("Password1!")
	require.NoError(t, err)
	second, err := HashPassword("Password1!")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	assert.False(t, VerifyPassword("anything", ""))
	assert.False(t, VerifyPassword("anything", "not-a-hash"))
	assert.False(t, VerifyPassword("anything", "$argon2id$v=19$garbage"))
}

func TestVerifyPasswordTimingSafe(t *testing.T) {
	hash, err := HashPassword("Password1!")
	require.NoError(t, err)

	assert.True(t, VerifyPasswordTimingSafe("Password1!", &hash))
	assert.False(t, VerifyPasswordTimingSafe("wrong", &hash))

	// Missing hash still runs a verification and always fails.
	assert.False(t, VerifyPasswordTimingSafe("Password1!", nil))
}

func TestGenerateSecureToken(t *testing.T) {
	token, err := GenerateSecureToken(32)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	other, err := GenerateSecureToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}
