// users.go

// Package identity is the account directory: user and admin records
// persisted through the document store, with PII run through the field
// cipher on the way in and out.
package identity

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dukalabs/duka-server/internal/core"
	"github.com/dukalabs/duka-server/internal/store"
)

const usersCollection = "users"

const (
	ContactEmail = "email"
	ContactPhone = "phone"
)

type Users struct {
	store  *store.Store
	cipher *core.FieldCipher
}

func NewUsers(st *store.Store, cipher *core.FieldCipher) *Users {
	return &Users{store: st, cipher: cipher}
}

func (d *Users) All() ([]User, error) {
	var users []User
	if err := d.store.Read(usersCollection, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (d *Users) FindByID(id int) (*User, error) {
	users, err := d.All()
	if err != nil {
		return nil, err
	}

	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}

	return nil, core.ErrNotFound
}

// Create normalizes, hashes, and encrypts the supplied contact values,
// enforces hash-index uniqueness, and persists the record with the
// next id. The duplicate check and the write run under the collection
// lock so two creates in this process cannot interleave.
func (d *Users) Create(name, passwordHash, email, phone string) (*User, error) {
	normEmail := core.NormalizeEmail(email)
	normPhone := core.NormalizePhone(phone)

	user := User{
		Name:         name,
		PasswordHash: passwordHash,
		Role:         RoleCustomer,
		EmailHash:    d.cipher.HashIndex(normEmail),
		PhoneHash:    d.cipher.HashIndex(normPhone),
		CreatedAt:    time.Now().UTC(),
	}

	if normEmail != "" {
		enc, err := d.cipher.Encrypt(normEmail)
		if err != nil {
			return nil, fmt.Errorf("encrypt email: %w", err)
		}
		user.Email = enc
	}

	if normPhone != "" {
		enc, err := d.cipher.Encrypt(normPhone)
		if err != nil {
			return nil, fmt.Errorf("encrypt phone: %w", err)
		}
		user.Phone = enc
	}

	var users []User
	err := d.store.Update(usersCollection, &users, func() error {
		ids := make([]int, 0, len(users))
		for i := range users {
			if user.EmailHash != "" && users[i].EmailHash == user.EmailHash {
				return core.ErrDuplicateContact
			}
			if user.PhoneHash != "" && users[i].PhoneHash == user.PhoneHash {
				return core.ErrDuplicateContact
			}
			ids = append(ids, users[i].ID)
		}

		user.ID = store.NextID(ids)
		users = append(users, user)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// Save replaces the stored record with the same id.
func (d *Users) Save(user *User) error {
	var users []User
	return d.store.Update(usersCollection, &users, func() error {
		for i := range users {
			if users[i].ID == user.ID {
				users[i] = *user
				return nil
			}
		}
		return core.ErrNotFound
	})
}

// FindByContact is the two-phase lookup: the hash index first, then a
// decrypting scan for records predating the index. A fallback match
// backfills the missing hash onto the record immediately, so each
// legacy record pays the scan cost at most once. The scan is linear
// and unbounded, which is acceptable only while collections stay
// file-sized.
func (d *Users) FindByContact(normalized, kind string) (*User, error) {
	if normalized == "" {
		return nil, core.ErrNotFound
	}

	users, err := d.All()
	if err != nil {
		return nil, err
	}

	digest := d.cipher.HashIndex(normalized)

	for i := range users {
		if kind == ContactEmail && users[i].EmailHash == digest {
			return &users[i], nil
		}
		if kind == ContactPhone && users[i].PhoneHash == digest {
			return &users[i], nil
		}
	}

	// Fallback scan over stored values that never got a hash index.
	for i := range users {
		var stored, existingHash string
		if kind == ContactEmail {
			stored, existingHash = users[i].Email, users[i].EmailHash
		} else {
			stored, existingHash = users[i].Phone, users[i].PhoneHash
		}

		if stored == "" || existingHash != "" {
			continue
		}

		plain := d.cipher.Decrypt(stored)
		var norm string
		if kind == ContactEmail {
			norm = core.NormalizeEmail(plain)
		} else {
			norm = core.NormalizePhone(plain)
		}

		if norm != normalized {
			continue
		}

		slog.Warn("legacy record matched via fallback scan, backfilling hash index",
			"userId", users[i].ID,
			"kind", kind,
		)

		if kind == ContactEmail {
			users[i].EmailHash = digest
		} else {
			users[i].PhoneHash = digest
		}

		if err := d.Save(&users[i]); err != nil {
			slog.Error("hash index backfill failed", "error", err,
				"userId", users[i].ID)
		}

		return &users[i], nil
	}

	return nil, core.ErrNotFound
}

// ContactView decrypts the stored contact values for a response body.
func (d *Users) ContactView(user *User) (email, phone string) {
	return d.cipher.Decrypt(user.Email), d.cipher.Decrypt(user.Phone)
}
