// cookies.go

package auth

import (
	"net/http"
	"time"
)

// Session cookies are HttpOnly and lax; the CSRF cookie is the only
// one the client is meant to read.
func setSessionCookie(
	w http.ResponseWriter,
	name, value string,
	ttl time.Duration,
	secure bool,
) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	})
}

func clearSessionCookie(w http.ResponseWriter, name string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	})
}
