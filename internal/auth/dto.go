// dto.go

package auth

import (
	"time"
)

type SignupRequest struct {
	Name     string `json:"name"     validate:"required,min=1,max=100"`
	Email    string `json:"email"    validate:"omitempty,max=255"`
	Phone    string `json:"phone"    validate:"omitempty,max=32"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginRequest accepts either a single identifier or explicit
// email/phone fields; the service classifies whichever is present.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"omitempty,max=255"`
	Email      string `json:"email"      validate:"omitempty,max=255"`
	Phone      string `json:"phone"      validate:"omitempty,max=32"`
	Password   string `json:"password"   validate:"required,max=128"`
}

type AdminLoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

// IdentityResponse is the safe identity view: contacts decrypted for
// the response, password hash stripped.
type IdentityResponse struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type AdminResponse struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Permissions []string  `json:"permissions,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
