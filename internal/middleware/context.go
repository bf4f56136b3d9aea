// context.go

package middleware

import (
	"context"

	"github.com/dukalabs/duka-server/internal/token"
)

type contextKey string

const (
	authContextKey contextKey = "auth_context"
	requestIDKey   contextKey = "request_id"
)

// AuthContext is the identity attached to a request by the session
// middleware. Both tracks are independent: a request may carry a user
// identity, an admin identity, neither, or (rarely) both.
type AuthContext struct {
	User  *token.Claims
	Admin *token.Claims
}

func (a *AuthContext) IsAnonymous() bool {
	return a == nil || (a.User == nil && a.Admin == nil)
}

func withAuthContext(
	ctx context.Context,
	auth *AuthContext,
) context.Context {
	return context.WithValue(ctx, authContextKey, auth)
}

func getAuthContext(ctx context.Context) *AuthContext {
	if auth, ok := ctx.Value(authContextKey).(*AuthContext); ok {
		return auth
	}
	return nil
}

// UserClaims returns the verified customer identity, or nil.
func UserClaims(ctx context.Context) *token.Claims {
	if auth := getAuthContext(ctx); auth != nil {
		return auth.User
	}
	return nil
}

// AdminClaims returns the verified admin identity, or nil.
func AdminClaims(ctx context.Context) *token.Claims {
	if auth := getAuthContext(ctx); auth != nil {
		return auth.Admin
	}
	return nil
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
