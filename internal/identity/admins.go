// admins.go

package identity

import (
	"errors"
	"time"

	"github.com/dukalabs/duka-server/internal/core"
	"github.com/dukalabs/duka-server/internal/store"
)

const adminsCollection = "admins"

// ErrLastSuperAdmin rejects deleting the only remaining super_admin.
var ErrLastSuperAdmin = errors.New("cannot delete the last super admin")

type Admins struct {
	store *store.Store
}

func NewAdmins(st *store.Store) *Admins {
	return &Admins{store: st}
}

func (d *Admins) All() ([]Admin, error) {
	var admins []Admin
	if err := d.store.Read(adminsCollection, &admins); err != nil {
		return nil, err
	}
	return admins, nil
}

func (d *Admins) FindByID(id int) (*Admin, error) {
	admins, err := d.All()
	if err != nil {
		return nil, err
	}

	for i := range admins {
		if admins[i].ID == id {
			return &admins[i], nil
		}
	}

	return nil, core.ErrNotFound
}

// FindByEmail matches case-insensitively; admin emails are stored
// normalized.
func (d *Admins) FindByEmail(email string) (*Admin, error) {
	norm := core.NormalizeEmail(email)

	admins, err := d.All()
	if err != nil {
		return nil, err
	}

	for i := range admins {
		if core.NormalizeEmail(admins[i].Email) == norm {
			return &admins[i], nil
		}
	}

	return nil, core.ErrNotFound
}

func (d *Admins) Create(admin *Admin) error {
	admin.Email = core.NormalizeEmail(admin.Email)
	admin.CreatedAt = time.Now().UTC()

	var admins []Admin
	return d.store.Update(adminsCollection, &admins, func() error {
		ids := make([]int, 0, len(admins))
		for i := range admins {
			if core.NormalizeEmail(admins[i].Email) == admin.Email {
				return core.ErrDuplicateContact
			}
			ids = append(ids, admins[i].ID)
		}

		admin.ID = store.NextID(ids)
		admins = append(admins, *admin)
		return nil
	})
}

func (d *Admins) Save(admin *Admin) error {
	var admins []Admin
	return d.store.Update(adminsCollection, &admins, func() error {
		for i := range admins {
			if admins[i].ID == admin.ID {
				admins[i] = *admin
				return nil
			}
		}
		return core.ErrNotFound
	})
}

// Delete removes an admin record, refusing to remove the last
// remaining super_admin.
func (d *Admins) Delete(id int) error {
	var admins []Admin
	return d.store.Update(adminsCollection, &admins, func() error {
		idx := -1
		superAdmins := 0
		for i := range admins {
			if admins[i].IsSuperAdmin() {
				superAdmins++
			}
			if admins[i].ID == id {
				idx = i
			}
		}

		if idx == -1 {
			return core.ErrNotFound
		}

		if admins[idx].IsSuperAdmin() && superAdmins <= 1 {
			return ErrLastSuperAdmin
		}

		admins = append(admins[:idx], admins[idx+1:]...)
		return nil
	})
}
