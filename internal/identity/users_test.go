// users_test.go

package identity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukalabs/duka-server/internal/core"
	"github.com/dukalabs/duka-server/internal/store"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func testUsers(t *testing.T) *Users {
	t.Helper()

	st, err := store.Open(t.TempDir())
	require.NoError(t, err)

	cipher, err := core.NewFieldCipher(testKeyHex)
	require.NoError(t, err)

	return NewUsers(st, cipher)
}

func TestCreateEncryptsContacts(t *testing.T) {
	users := testUsers(t)

	user, err := users.Create("Jane", "hash", "Jane@Example.COM", "")
	require.NoError(t, err)

	assert.Equal(t, 1, user.ID)
	assert.Equal(t, RoleCustomer, user.Role)
	assert.True(t, strings.HasPrefix(user.Email, "enc:"))
	assert.NotEmpty(t, user.EmailHash)
	assert.Empty(t, user.Phone)
	assert.Empty(t, user.PhoneHash)

	email, phone := users.ContactView(user)
	assert.Equal(t, "jane@example.com", email)
	assert.Empty(t, phone)
}

func TestCreateRejectsDuplicateContact(t *testing.T) {
	users := testUsers(t)

	_, err := users.Create("Jane", "hash", "jane@example.com", "")
	require.NoError(t, err)

	// Same email with different formatting is still a duplicate.
	_, err = users.Create("Other", "hash", " JANE@example.com ", "")
	assert.ErrorIs(t, err, core.ErrDuplicateContact)

	_, err = users.Create("Phil", "hash", "", "+254 712 345 678")
	require.NoError(t, err)
	_, err = users.Create("Phil2", "hash", "", "+254712345678")
	assert.ErrorIs(t, err, core.ErrDuplicateContact)
}

func TestFindByContactViaHashIndex(t *testing.T) {
	users := testUsers(t)

	created, err := users.Create("Jane", "hash", "jane@example.com", "")
	require.NoError(t, err)

	found, err := users.FindByContact("jane@example.com", ContactEmail)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = users.FindByContact("nobody@example.com", ContactEmail)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = users.FindByContact("", ContactEmail)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestFindByContactFallbackBackfillsHash(t *testing.T) {
	users := testUsers(t)

	// Simulate a legacy record: encrypted contact, no hash index.
	created, err := users.Create("Jane", "hash", "jane@example.com", "")
	require.NoError(t, err)
	created.EmailHash = ""
	require.NoError(t, users.Save(created))

	found, err := users.FindByContact("jane@example.com", ContactEmail)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.NotEmpty(t, found.EmailHash)

	// The backfill persisted, so the next lookup hits the index.
	stored, err := users.FindByID(created.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.EmailHash)
}

func TestFindByContactLegacyPlaintext(t *testing.T) {
	st, err := store.Open(t.TempDir())
	require.NoError(t, err)

	// Records written before encryption was configured hold plaintext.
	plainCipher, err := core.NewFieldCipher("")
	require.NoError(t, err)
	legacy := NewUsers(st, plainCipher)

	created, err := legacy.Create("Jane", "hash", "jane@example.com", "")
	require.NoError(t, err)
	created.EmailHash = ""
	require.NoError(t, legacy.Save(created))

	// Key configured later: decrypt-or-passthrough still matches.
	cipher, err := core.NewFieldCipher(testKeyHex)
	require.NoError(t, err)
	users := NewUsers(st, cipher)

	found, err := users.FindByContact("jane@example.com", ContactEmail)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}
