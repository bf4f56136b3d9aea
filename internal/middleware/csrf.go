// csrf.go

package middleware

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/dukalabs/duka-server/internal/core"
)

const (
	CookieCSRF = "csrf_token"
	HeaderCSRF = "X-CSRF-Token"

	csrfTokenBytes = 32
)

// CSRFGuard implements the stateless double-submit scheme: a readable
// cookie the client mirrors into a request header on writes. Validity
// is "cookie equals header", with no server-side registry, which
// protects against cross-site form submission but not against an
// attacker who can already read the cookie.
type CSRFGuard struct {
	ttl    time.Duration
	secure bool
}

func NewCSRFGuard(ttl time.Duration, secure bool) *CSRFGuard {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &CSRFGuard{ttl: ttl, secure: secure}
}

// EnsureToken mints a csrf_token cookie on any request that lacks one.
// The cookie is deliberately not HttpOnly: the client must read it to
// echo it back in the header.
func (g *CSRFGuard) EnsureToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if readCookie(r, CookieCSRF) == "" {
			tok, err := core.GenerateSecureToken(csrfTokenBytes)
			if err == nil {
				http.SetCookie(w, &http.Cookie{
					Name:     CookieCSRF,
					Value:    tok,
					Path:     "/",
					MaxAge:   int(g.ttl.Seconds()),
					HttpOnly: false,
					SameSite: http.SameSiteLaxMode,
					Secure:   g.secure,
				})
			}
		}

		next.ServeHTTP(w, r)
	})
}

// RequireForWrite is a no-op for safe methods; for everything else the
// cookie and the X-CSRF-Token header must both be present and equal.
func (g *CSRFGuard) RequireForWrite(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isSafeMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		cookieVal := readCookie(r, CookieCSRF)
		headerVal := r.Header.Get(HeaderCSRF)

		if cookieVal == "" || headerVal == "" ||
			subtle.ConstantTimeCompare(
				[]byte(cookieVal),
				[]byte(headerVal),
			) != 1 {
			core.JSONError(w, core.CsrfMismatchError())
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
