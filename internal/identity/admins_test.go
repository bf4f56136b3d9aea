// admins_test.go

package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukalabs/duka-server/internal/core"
	"github.com/dukalabs/duka-server/internal/store"
)

func testAdmins(t *testing.T) *Admins {
	t.Helper()

	st, err := store.Open(t.TempDir())
	require.NoError(t, err)
	return NewAdmins(st)
}

func TestAdminCreateAndFindByEmail(t *testing.T) {
	admins := testAdmins(t)

	admin := &Admin{Name: "Root", Email: "Root@Example.COM", Role: RoleSuperAdmin}
	require.NoError(t, admins.Create(admin))
	assert.Equal(t, 1, admin.ID)
	assert.Equal(t, "root@example.com", admin.Email)

	found, err := admins.FindByEmail("ROOT@example.com")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, found.ID)

	dup := &Admin{Name: "Dup", Email: "root@example.com", Role: RoleAdmin}
	assert.ErrorIs(t, admins.Create(dup), core.ErrDuplicateContact)
}

func TestDeleteLastSuperAdminRefused(t *testing.T) {
	admins := testAdmins(t)

	super := &Admin{Name: "Root", Email: "root@example.com", Role: RoleSuperAdmin}
	require.NoError(t, admins.Create(super))

	assert.ErrorIs(t, admins.Delete(super.ID), ErrLastSuperAdmin)

	second := &Admin{Name: "Backup", Email: "backup@example.com", Role: RoleSuperAdmin}
	require.NoError(t, admins.Create(second))

	assert.NoError(t, admins.Delete(super.ID))

	// Back to one super admin, protected again.
	assert.ErrorIs(t, admins.Delete(second.ID), ErrLastSuperAdmin)
}

func TestDeletePlainAdmin(t *testing.T) {
	admins := testAdmins(t)

	super := &Admin{Name: "Root", Email: "root@example.com", Role: RoleSuperAdmin}
	require.NoError(t, admins.Create(super))
	plain := &Admin{Name: "Ops", Email: "ops@example.com", Role: RoleAdmin}
	require.NoError(t, admins.Create(plain))

	assert.NoError(t, admins.Delete(plain.ID))
	assert.ErrorIs(t, admins.Delete(99), core.ErrNotFound)
}

func TestLockoutBookkeeping(t *testing.T) {
	now := time.Now()
	admin := Admin{Role: RoleAdmin}

	const maxAttempts = 2
	lockFor := 15 * time.Minute

	admin.RecordFailure(now, maxAttempts, lockFor)
	assert.Equal(t, 1, admin.FailedAttempts)
	assert.False(t, admin.Locked(now))

	admin.RecordFailure(now, maxAttempts, lockFor)
	assert.Equal(t, 2, admin.FailedAttempts)
	assert.True(t, admin.Locked(now))
	assert.Equal(t, 15, admin.LockRemaining(now.Add(time.Second)))

	// The lock is time-based: it expires on its own.
	later := now.Add(16 * time.Minute)
	assert.False(t, admin.Locked(later))
	assert.Zero(t, admin.LockRemaining(later))

	admin.RecordSuccess()
	assert.Zero(t, admin.FailedAttempts)
	assert.Nil(t, admin.LockUntil)
}

func TestIsConfigured(t *testing.T) {
	admin := Admin{}
	assert.False(t, admin.IsConfigured())

	admin.PasswordHash = "$argon2id$..."
	assert.True(t, admin.IsConfigured())
}
