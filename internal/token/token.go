// token.go

// Package token issues and verifies the two session token domains.
// User and admin tokens are signed with distinct secrets, so a token
// valid in one domain can never verify in the other even if one
// secret leaks.
package token

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/dukalabs/duka-server/internal/config"
	"github.com/dukalabs/duka-server/internal/core"
)

const (
	domainUser  = "user"
	domainAdmin = "admin"

	issuer = "duka-server"
)

// Claims is the decoded identity a verified session token carries:
// subject id, role, and the contact values denormalized at issuance.
type Claims struct {
	Subject int
	Role    string
	Email   string
	Phone   string
}

type Manager struct {
	userKey  jwk.Key
	adminKey jwk.Key
	ttl      time.Duration
}

func NewManager(cfg config.AuthConfig) (*Manager, error) {
	userKey, err := jwk.Import([]byte(cfg.UserSessionSecret))
	if err != nil {
		return nil, fmt.Errorf("import user session key: %w", err)
	}

	adminKey, err := jwk.Import([]byte(cfg.AdminSessionSecret))
	if err != nil {
		return nil, fmt.Errorf("import admin session key: %w", err)
	}

	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	return &Manager{
		userKey:  userKey,
		adminKey: adminKey,
		ttl:      ttl,
	}, nil
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

func (m *Manager) SignUser(claims Claims) (string, error) {
	return m.sign(claims, domainUser, m.userKey)
}

func (m *Manager) SignAdmin(claims Claims) (string, error) {
	return m.sign(claims, domainAdmin, m.adminKey)
}

func (m *Manager) VerifyUser(tokenString string) (*Claims, error) {
	return m.verify(tokenString, domainUser, m.userKey)
}

func (m *Manager) VerifyAdmin(tokenString string) (*Claims, error) {
	return m.verify(tokenString, domainAdmin, m.adminKey)
}

func (m *Manager) sign(
	claims Claims,
	domain string,
	key jwk.Key,
) (string, error) {
	now := time.Now()

	tok, err := jwt.NewBuilder().
		JwtID(uuid.New().String()).
		Issuer(issuer).
		Subject(strconv.Itoa(claims.Subject)).
		IssuedAt(now).
		Expiration(now.Add(m.ttl)).
		NotBefore(now).
		Claim("role", claims.Role).
		Claim("email", claims.Email).
		Claim("phone", claims.Phone).
		Claim("type", domain).
		Build()
	if err != nil {
		return "", fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256(), key))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return string(signed), nil
}

func (m *Manager) verify(
	tokenString, domain string,
	key jwk.Key,
) (*Claims, error) {
	tok, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKey(jwa.HS256(), key),
		jwt.WithValidate(true),
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		if isTokenExpiredError(err) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}

	var tokenType string
	if err := tok.Get("type", &tokenType); err != nil || tokenType != domain {
		return nil, fmt.Errorf(
			"verify token: wrong token domain: %w",
			core.ErrTokenInvalid,
		)
	}

	subject, ok := tok.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf(
			"verify token: missing subject: %w",
			core.ErrTokenInvalid,
		)
	}

	subjectID, err := strconv.Atoi(subject)
	if err != nil || subjectID <= 0 {
		return nil, fmt.Errorf(
			"verify token: malformed subject: %w",
			core.ErrTokenInvalid,
		)
	}

	var role string
	if err := tok.Get("role", &role); err != nil {
		return nil, fmt.Errorf(
			"verify token: missing role claim: %w",
			core.ErrTokenInvalid,
		)
	}

	claims := &Claims{
		Subject: subjectID,
		Role:    role,
	}

	//nolint:errcheck // contact claims are optional denormalized data
	_ = tok.Get("email", &claims.Email)
	//nolint:errcheck
	_ = tok.Get("phone", &claims.Phone)

	return claims, nil
}

func isTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "exp") &&
		strings.Contains(errStr, "not satisfied")
}
