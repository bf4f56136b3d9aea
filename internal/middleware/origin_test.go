// origin_test.go

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOriginGuardEmptyListIsPermissive(t *testing.T) {
	guard := NewOriginGuard(nil)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	guard.RequireOrigin(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOriginGuardAllowsListedOrigin(t *testing.T) {
	guard := NewOriginGuard([]string{"https://admin.example.com"})

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	rec := httptest.NewRecorder()
	guard.RequireOrigin(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOriginGuardRejectsUnlistedOrigin(t *testing.T) {
	guard := NewOriginGuard([]string{"https://admin.example.com"})

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	guard.RequireOrigin(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "origin")
}

func TestOriginGuardRejectsMissingOrigin(t *testing.T) {
	guard := NewOriginGuard([]string{"https://admin.example.com"})

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	guard.RequireOrigin(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestOriginGuardAlwaysAllowsPreflight(t *testing.T) {
	guard := NewOriginGuard([]string{"https://admin.example.com"})

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	guard.RequireOrigin(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireOriginForWriteExemptsReads(t *testing.T) {
	guard := NewOriginGuard([]string{"https://admin.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	guard.RequireOriginForWrite(okHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	rec = httptest.NewRecorder()
	guard.RequireOriginForWrite(okHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
