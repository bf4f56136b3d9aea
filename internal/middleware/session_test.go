// session_test.go

package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dukalabs/duka-server/internal/token"
)

type fakeVerifier struct {
	claims *token.Claims
	err    error
}

func (f fakeVerifier) VerifyUser(string) (*token.Claims, error) {
	return f.claims, f.err
}

func (f fakeVerifier) VerifyAdmin(string) (*token.Claims, error) {
	return f.claims, f.err
}

func claimsCapture(dst **AuthContext) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*dst = getAuthContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireUserMissingCookie(t *testing.T) {
	mw := RequireUser(fakeVerifier{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireUserInvalidToken(t *testing.T) {
	mw := RequireUser(fakeVerifier{err: errors.New("bad signature")})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieUserSession, Value: "bad"})
	rec := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireUserAttachesClaims(t *testing.T) {
	mw := RequireUser(fakeVerifier{
		claims: &token.Claims{Subject: 7, Role: RoleCustomer},
	})

	var got *AuthContext
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieUserSession, Value: "good"})
	rec := httptest.NewRecorder()
	mw(claimsCapture(&got)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, got)
	assert.NotNil(t, got.User)
	assert.Equal(t, 7, got.User.Subject)
	assert.Nil(t, got.Admin)
}

func TestOptionalUserNeverRejects(t *testing.T) {
	mw := OptionalUser(fakeVerifier{err: errors.New("bad signature")})

	var got *AuthContext
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieUserSession, Value: "bad"})
	rec := httptest.NewRecorder()
	mw(claimsCapture(&got)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, got)
}

func TestOptionalAdminAttachesWhenValid(t *testing.T) {
	mw := OptionalAdmin(fakeVerifier{
		claims: &token.Claims{Subject: 3, Role: RoleAdmin},
	})

	var got *AuthContext
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieAdminSession, Value: "good"})
	rec := httptest.NewRecorder()
	mw(claimsCapture(&got)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, got)
	assert.NotNil(t, got.Admin)
	assert.Nil(t, got.User)
}

func TestRequireAdminUsesAdminCookie(t *testing.T) {
	mw := RequireAdmin(fakeVerifier{
		claims: &token.Claims{Subject: 1, Role: RoleAdmin},
	})

	// A user session cookie does not satisfy the admin track.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieUserSession, Value: "good"})
	rec := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieAdminSession, Value: "good"})
	rec = httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireSuperAdmin(t *testing.T) {
	requireAdmin := RequireAdmin(fakeVerifier{
		claims: &token.Claims{Subject: 1, Role: RoleAdmin},
	})

	// No admin identity attached at all.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	RequireSuperAdmin(okHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Plain admin role is forbidden.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieAdminSession, Value: "good"})
	rec = httptest.NewRecorder()
	requireAdmin(RequireSuperAdmin(okHandler())).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Super admin passes.
	requireSuper := RequireAdmin(fakeVerifier{
		claims: &token.Claims{Subject: 1, Role: RoleSuperAdmin},
	})
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieAdminSession, Value: "good"})
	rec = httptest.NewRecorder()
	requireSuper(RequireSuperAdmin(okHandler())).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireUserForWriteExemptsReads(t *testing.T) {
	mw := RequireUserForWrite(fakeVerifier{err: errors.New("invalid")})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	rec = httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
