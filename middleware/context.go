package middleware

import (
	"context"
)

// Context key type to avoid collisions
type contextKey string

const (
	// PrincipalKey is the context key for the authenticated principal
	PrincipalKey contextKey = "principal"
)

// Principal is the request-scoped authenticated identity. It lives only for
// the duration of the request that carried a valid token.
type Principal struct {
	ID       string
	Username string
	Email    string
	Roles    []string
}

// HasRole returns true if the principal carries the given role name
func (p *Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// GetPrincipalFromContext retrieves the authenticated principal from context.
// Returns nil for anonymous requests.
func GetPrincipalFromContext(ctx context.Context) *Principal {
	if val := ctx.Value(PrincipalKey); val != nil {
		if principal, ok := val.(*Principal); ok {
			return principal
		}
	}
	return nil
}

// WithPrincipal adds the authenticated principal to the context
func WithPrincipal(ctx context.Context, principal *Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, principal)
}
