// entity.go

package identity

import (
	"time"
)

const (
	RoleCustomer   = "customer"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// User is a customer identity record. Email and phone hold whatever
// the field cipher produced at write time (ciphertext envelope, or
// plaintext when no key is configured), so callers must treat them as
// opaque and always decrypt-or-passthrough before use. EmailHash and
// PhoneHash may be absent on records predating the hash index; they
// are backfilled lazily on first successful lookup.
type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	EmailHash    string    `json:"emailHash,omitempty"`
	PhoneHash    string    `json:"phoneHash,omitempty"`
	PasswordHash string    `json:"passwordHash"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Admin is a back-office identity record. A missing PasswordHash means
// the account has not been bootstrapped yet and can only log in with
// the configured bootstrap password.
type Admin struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"passwordHash,omitempty"`
	Role         string     `json:"role"`
	Permissions  []string   `json:"permissions,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`

	FailedAttempts int        `json:"failedLoginAttempts,omitempty"`
	LockUntil      *time.Time `json:"lockUntil,omitempty"`
}

func (a *Admin) IsConfigured() bool {
	return a.PasswordHash != ""
}

func (a *Admin) IsSuperAdmin() bool {
	return a.Role == RoleSuperAdmin
}

// Locked reports whether the account is inside an active lock window.
// The lock is time-based: it expires on its own, regardless of what
// happens in between.
func (a *Admin) Locked(now time.Time) bool {
	return a.LockUntil != nil && now.Before(*a.LockUntil)
}

// LockRemaining returns whole minutes left in the lock window, at
// least 1 while locked.
func (a *Admin) LockRemaining(now time.Time) int {
	if !a.Locked(now) {
		return 0
	}
	minutes := int(a.LockUntil.Sub(now).Minutes()) + 1
	return minutes
}

// RecordFailure increments the failure counter and starts the lock
// window once the counter reaches the threshold. The attempt that
// trips the threshold still reports as a plain failure; only
// subsequent attempts inside the window fail fast.
func (a *Admin) RecordFailure(now time.Time, maxAttempts int, lockFor time.Duration) {
	a.FailedAttempts++
	if a.FailedAttempts >= maxAttempts {
		until := now.Add(lockFor)
		a.LockUntil = &until
	}
}

// RecordSuccess clears the lockout bookkeeping.
func (a *Admin) RecordSuccess() {
	a.FailedAttempts = 0
	a.LockUntil = nil
}
