// service.go

package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/dukalabs/duka-server/internal/audit"
	"github.com/dukalabs/duka-server/internal/config"
	"github.com/dukalabs/duka-server/internal/core"
	"github.com/dukalabs/duka-server/internal/identity"
	"github.com/dukalabs/duka-server/internal/token"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminNotConfigured = errors.New("admin account not configured")
)

type Service struct {
	users  *identity.Users
	admins *identity.Admins
	tokens *token.Manager
	audit  *audit.Logger

	bootstrapPassword string
	maxFailedAttempts int
	lockDuration      time.Duration
}

func NewService(
	users *identity.Users,
	admins *identity.Admins,
	tokens *token.Manager,
	auditLog *audit.Logger,
	adminCfg config.AdminConfig,
) *Service {
	return &Service{
		users:             users,
		admins:            admins,
		tokens:            tokens,
		audit:             auditLog,
		bootstrapPassword: adminCfg.BootstrapPassword,
		maxFailedAttempts: adminCfg.MaxFailedAttempts,
		lockDuration:      adminCfg.LockDuration,
	}
}

// Signup creates a customer record with encrypted contacts and
// returns the safe view plus a signed session token.
func (s *Service) Signup(req SignupRequest) (*IdentityResponse, string, error) {
	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(req.Name, passwordHash, req.Email, req.Phone)
	if err != nil {
		return nil, "", err
	}

	return s.userSession(user)
}

// Login authenticates by email or phone. Unknown identifier and wrong
// password produce the same error by contract, and both paths run a
// full password verification so they take the same time.
func (s *Service) Login(req LoginRequest) (*IdentityResponse, string, error) {
	identifier := req.Identifier
	if identifier == "" {
		identifier = req.Email
	}
	if identifier == "" {
		identifier = req.Phone
	}

	normalized, kind := core.ClassifyIdentifier(identifier)

	user, err := s.users.FindByContact(normalized, kind)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	if !core.VerifyPasswordTimingSafe(req.Password, &user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	return s.userSession(user)
}

func (s *Service) userSession(
	user *identity.User,
) (*IdentityResponse, string, error) {
	email, phone := s.users.ContactView(user)

	signed, err := s.tokens.SignUser(token.Claims{
		Subject: user.ID,
		Role:    user.Role,
		Email:   email,
		Phone:   phone,
	})
	if err != nil {
		return nil, "", fmt.Errorf("sign user token: %w", err)
	}

	return &IdentityResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     email,
		Phone:     phone,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}, signed, nil
}

// AdminLogin handles both branches of the admin flow: one-time
// bootstrap provisioning for an account without a password hash, and
// normal verification with lockout bookkeeping for a configured one.
// An active lock fails fast before any password is consulted.
func (s *Service) AdminLogin(
	req AdminLoginRequest,
	clientIP string,
) (*AdminResponse, string, error) {
	admin, err := s.admins.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.VerifyPasswordTimingSafe(req.Password, nil)
			s.audit.Record(audit.EventAdminLoginFail,
				"email", core.NormalizeEmail(req.Email),
				"reason", "unknown_admin",
				"ip", clientIP,
			)
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("find admin: %w", err)
	}

	now := time.Now()

	if admin.Locked(now) {
		s.audit.Record(audit.EventAdminLocked,
			"adminId", admin.ID,
			"ip", clientIP,
		)
		return nil, "", core.AccountLockedError(admin.LockRemaining(now))
	}

	if !admin.IsConfigured() {
		return s.bootstrapLogin(admin, req.Password, clientIP)
	}

	if !core.VerifyPassword(req.Password, admin.PasswordHash) {
		admin.RecordFailure(now, s.maxFailedAttempts, s.lockDuration)
		if err := s.admins.Save(admin); err != nil {
			return nil, "", fmt.Errorf("record failed attempt: %w", err)
		}
		s.audit.Record(audit.EventAdminLoginFail,
			"adminId", admin.ID,
			"attempts", admin.FailedAttempts,
			"ip", clientIP,
		)
		return nil, "", ErrInvalidCredentials
	}

	if admin.FailedAttempts > 0 || admin.LockUntil != nil {
		admin.RecordSuccess()
		if err := s.admins.Save(admin); err != nil {
			return nil, "", fmt.Errorf("reset lockout: %w", err)
		}
	}

	s.audit.Record(audit.EventAdminLogin, "adminId", admin.ID, "ip", clientIP)

	return s.adminSession(admin)
}

// bootstrapLogin provisions the admin's permanent password hash from
// the configured bootstrap password, exactly once. After this the
// persisted hash is authoritative, even if it diverges from the
// bootstrap value.
func (s *Service) bootstrapLogin(
	admin *identity.Admin,
	password, clientIP string,
) (*AdminResponse, string, error) {
	if s.bootstrapPassword == "" ||
		subtle.ConstantTimeCompare(
			[]byte(password),
			[]byte(s.bootstrapPassword),
		) != 1 {
		s.audit.Record(audit.EventAdminLoginFail,
			"adminId", admin.ID,
			"reason", "not_configured",
			"ip", clientIP,
		)
		return nil, "", ErrAdminNotConfigured
	}

	passwordHash, err := core.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("hash bootstrap password: %w", err)
	}

	admin.PasswordHash = passwordHash
	admin.RecordSuccess()
	if err := s.admins.Save(admin); err != nil {
		return nil, "", fmt.Errorf("persist bootstrap password: %w", err)
	}

	s.audit.Record(audit.EventAdminBootstrap,
		"adminId", admin.ID,
		"ip", clientIP,
	)

	return s.adminSession(admin)
}

func (s *Service) adminSession(
	admin *identity.Admin,
) (*AdminResponse, string, error) {
	signed, err := s.tokens.SignAdmin(token.Claims{
		Subject: admin.ID,
		Role:    admin.Role,
		Email:   admin.Email,
	})
	if err != nil {
		return nil, "", fmt.Errorf("sign admin token: %w", err)
	}

	return toAdminResponse(admin), signed, nil
}

// CurrentUser re-reads the record so the view is live, not the stale
// claims cached in the token.
func (s *Service) CurrentUser(id int) (*IdentityResponse, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		return nil, err
	}

	email, phone := s.users.ContactView(user)
	return &IdentityResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     email,
		Phone:     phone,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}, nil
}

func (s *Service) CurrentAdmin(id int) (*AdminResponse, error) {
	admin, err := s.admins.FindByID(id)
	if err != nil {
		return nil, err
	}
	return toAdminResponse(admin), nil
}

func toAdminResponse(admin *identity.Admin) *AdminResponse {
	return &AdminResponse{
		ID:          admin.ID,
		Name:        admin.Name,
		Email:       admin.Email,
		Role:        admin.Role,
		Permissions: admin.Permissions,
		CreatedAt:   admin.CreatedAt,
	}
}
