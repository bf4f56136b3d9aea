// csrf_test.go

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestEnsureTokenMintsCookie(t *testing.T) {
	guard := NewCSRFGuard(2*time.Hour, false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	guard.EnsureToken(okHandler()).ServeHTTP(rec, req)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	cookie := cookies[0]
	assert.Equal(t, CookieCSRF, cookie.Name)
	assert.NotEmpty(t, cookie.Value)
	assert.False(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, int((2 * time.Hour).Seconds()), cookie.MaxAge)
}

func TestEnsureTokenKeepsExistingCookie(t *testing.T) {
	guard := NewCSRFGuard(0, false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieCSRF, Value: "existing"})
	rec := httptest.NewRecorder()
	guard.EnsureToken(okHandler()).ServeHTTP(rec, req)

	assert.Empty(t, rec.Result().Cookies())
}

func TestRequireForWriteSafeMethodsPass(t *testing.T) {
	guard := NewCSRFGuard(0, false)

	for _, method := range []string{
		http.MethodGet, http.MethodHead, http.MethodOptions,
	} {
		req := httptest.NewRequest(method, "/", nil)
		rec := httptest.NewRecorder()
		guard.RequireForWrite(okHandler()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, method)
	}
}

func TestRequireForWriteMissingHeader(t *testing.T) {
	guard := NewCSRFGuard(0, false)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieCSRF, Value: "token-value"})
	rec := httptest.NewRecorder()
	guard.RequireForWrite(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "csrf")
}

func TestRequireForWriteMismatch(t *testing.T) {
	guard := NewCSRFGuard(0, false)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieCSRF, Value: "token-value"})
	req.Header.Set(HeaderCSRF, "different-value")
	rec := httptest.NewRecorder()
	guard.RequireForWrite(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireForWriteMatchingPairPasses(t *testing.T) {
	guard := NewCSRFGuard(0, false)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieCSRF, Value: "token-value"})
	req.Header.Set(HeaderCSRF, "token-value")
	rec := httptest.NewRecorder()
	guard.RequireForWrite(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
