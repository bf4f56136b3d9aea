// dto.go

package admin

import (
	"time"

	"github.com/dukalabs/duka-server/internal/store"
)

type CreateAdminRequest struct {
	Name        string   `json:"name"        validate:"required,min=1,max=100"`
	Email       string   `json:"email"       validate:"required,email,max=255"`
	Password    string   `json:"password"    validate:"omitempty,min=8,max=128"`
	Role        string   `json:"role"        validate:"required,oneof=admin super_admin"`
	Permissions []string `json:"permissions" validate:"omitempty,dive,max=64"`
}

type UpdateAdminRequest struct {
	Name        string   `json:"name"        validate:"omitempty,min=1,max=100"`
	Password    string   `json:"password"    validate:"omitempty,min=8,max=128"`
	Role        string   `json:"role"        validate:"omitempty,oneof=admin super_admin"`
	Permissions []string `json:"permissions" validate:"omitempty,dive,max=64"`
}

// AdminView never carries the password hash. Configured tells the
// back office whether the account still needs its bootstrap login.
type AdminView struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Permissions []string  `json:"permissions,omitempty"`
	Configured  bool      `json:"configured"`
	CreatedAt   time.Time `json:"createdAt"`
}

type SystemStatsResponse struct {
	Store   StoreStats   `json:"store"`
	Runtime RuntimeStats `json:"runtime"`
}

type StoreStats struct {
	DataDir     string                          `json:"dataDir"`
	Collections map[string]store.CollectionInfo `json:"collections"`
}

type RuntimeStats struct {
	GoVersion    string `json:"goVersion"`
	NumGoroutine int    `json:"numGoroutine"`
	NumCPU       int    `json:"numCpu"`
	MemAlloc     uint64 `json:"memAlloc"`
	MemSys       uint64 `json:"memSys"`
	NumGC        uint32 `json:"numGc"`
}
