// session.go

package middleware

import (
	"net/http"

	"github.com/dukalabs/duka-server/internal/core"
	"github.com/dukalabs/duka-server/internal/token"
)

const (
	CookieUserSession  = "session"
	CookieAdminSession = "admin_session"

	RoleCustomer   = "customer"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

type UserVerifier interface {
	VerifyUser(tokenString string) (*token.Claims, error)
}

type AdminVerifier interface {
	VerifyAdmin(tokenString string) (*token.Claims, error)
}

// RequireUser rejects requests without a valid customer session
// cookie: 401 when the cookie is missing and 401 when it fails
// verification, without leaking which.
func RequireUser(verifier UserVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := readCookie(r, CookieUserSession)
			if raw == "" {
				core.JSONError(w, core.UnauthorizedError(""))
				return
			}

			claims, err := verifier.VerifyUser(raw)
			if err != nil {
				core.JSONError(w, core.InvalidSessionError())
				return
			}

			next.ServeHTTP(w, r.WithContext(
				withAuthContext(r.Context(), mergeAuth(r, claims, nil)),
			))
		})
	}
}

// OptionalUser attaches the customer identity when the cookie verifies
// and proceeds anonymously otherwise. It never rejects.
func OptionalUser(verifier UserVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw := readCookie(r, CookieUserSession); raw != "" {
				if claims, err := verifier.VerifyUser(raw); err == nil {
					r = r.WithContext(withAuthContext(
						r.Context(),
						mergeAuth(r, claims, nil),
					))
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RequireAdmin(verifier AdminVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := readCookie(r, CookieAdminSession)
			if raw == "" {
				core.JSONError(w, core.UnauthorizedError(""))
				return
			}

			claims, err := verifier.VerifyAdmin(raw)
			if err != nil {
				core.JSONError(w, core.InvalidSessionError())
				return
			}

			next.ServeHTTP(w, r.WithContext(
				withAuthContext(r.Context(), mergeAuth(r, nil, claims)),
			))
		})
	}
}

func OptionalAdmin(verifier AdminVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw := readCookie(r, CookieAdminSession); raw != "" {
				if claims, err := verifier.VerifyAdmin(raw); err == nil {
					r = r.WithContext(withAuthContext(
						r.Context(),
						mergeAuth(r, nil, claims),
					))
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireSuperAdmin assumes an admin track middleware already ran: 401
// when no admin identity is attached, 403 when the role is not
// super_admin.
func RequireSuperAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := AdminClaims(r.Context())
		if claims == nil {
			core.JSONError(w, core.UnauthorizedError(""))
			return
		}

		if claims.Role != RoleSuperAdmin {
			core.JSONError(w, core.ForbiddenError("super admin required"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireUserForWrite lets GET and HEAD through untouched so public
// reads skip auth, and applies the full requirement to everything
// else.
func RequireUserForWrite(
	verifier UserVerifier,
) func(http.Handler) http.Handler {
	required := RequireUser(verifier)
	return writeOnly(required)
}

func RequireAdminForWrite(
	verifier AdminVerifier,
) func(http.Handler) http.Handler {
	required := RequireAdmin(verifier)
	return writeOnly(required)
}

func writeOnly(
	gate func(http.Handler) http.Handler,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		gated := gate(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			gated.ServeHTTP(w, r)
		})
	}
}

// mergeAuth preserves an identity already attached by the other track.
func mergeAuth(
	r *http.Request,
	user, admin *token.Claims,
) *AuthContext {
	auth := &AuthContext{User: user, Admin: admin}
	if existing := getAuthContext(r.Context()); existing != nil {
		if auth.User == nil {
			auth.User = existing.User
		}
		if auth.Admin == nil {
			auth.Admin = existing.Admin
		}
	}
	return auth
}

func readCookie(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
