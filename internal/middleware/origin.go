// origin.go

package middleware

import (
	"net/http"

	"github.com/dukalabs/duka-server/internal/core"
)

// OriginGuard enforces the admin-surface origin allow-list. Entries
// are exact origin strings; an empty list leaves the guard open,
// which is intended for local development only.
type OriginGuard struct {
	allowed map[string]struct{}
}

func NewOriginGuard(origins []string) *OriginGuard {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o != "" {
			allowed[o] = struct{}{}
		}
	}
	return &OriginGuard{allowed: allowed}
}

// IsAllowed is always true for OPTIONS so preflights pass. With a
// non-empty allow-list the Origin header must be present and match a
// list entry exactly.
func (g *OriginGuard) IsAllowed(r *http.Request) bool {
	if r.Method == http.MethodOptions {
		return true
	}

	if len(g.allowed) == 0 {
		return true
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		return false
	}

	_, ok := g.allowed[origin]
	return ok
}

// RequireOrigin gates every request; applied to all admin-namespaced
// routes.
func (g *OriginGuard) RequireOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.IsAllowed(r) {
			core.JSONError(w, core.OriginRejectedError())
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireOriginForWrite gates only non-safe methods, for surfaces
// where reads are public but writes stay origin-gated.
func (g *OriginGuard) RequireOriginForWrite(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isSafeMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		if !g.IsAllowed(r) {
			core.JSONError(w, core.OriginRejectedError())
			return
		}

		next.ServeHTTP(w, r)
	})
}
