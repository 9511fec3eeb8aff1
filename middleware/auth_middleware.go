package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/diefthyntis/twoaut-auth-api/models"
	"github.com/diefthyntis/twoaut-auth-api/utils"
)

// bearerPrefix is the literal Authorization scheme prefix for bearer tokens
const bearerPrefix = "Bearer "

// TokenValidator verifies bearer tokens and extracts their subject
type TokenValidator interface {
	// Validate reports whether the token is well formed, signed with the
	// expected key, and unexpired
	Validate(tokenString string) bool

	// Subject returns the subject claim of a verified token
	Subject(tokenString string) (string, error)
}

// UserResolver looks up the stored user behind a token subject
type UserResolver interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// AuthMiddleware provides authentication middleware functionality
type AuthMiddleware struct {
	validator TokenValidator
	users     UserResolver
	logger    *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(validator TokenValidator, users UserResolver, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		validator: validator,
		users:     users,
		logger:    logger,
	}
}

// Authenticate runs once per request and attaches a Principal to the context
// when a valid bearer token resolves to a stored user. It never rejects the
// request itself: every failure path logs and proceeds unauthenticated, and
// the guards downstream decide whether anonymous access is allowed.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenString := extractBearerToken(r)
		if tokenString == "" {
			next.ServeHTTP(w, r)
			return
		}

		if !m.validator.Validate(tokenString) {
			// Already logged by category inside the validator
			next.ServeHTTP(w, r)
			return
		}

		username, err := m.validator.Subject(tokenString)
		if err != nil {
			m.logger.Warn("cannot extract token subject", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.users.GetByUsername(ctx, username)
		if err != nil {
			// Covers both a user deleted after issuance and a store failure
			m.logger.Warn("cannot resolve token subject",
				zap.String("username", username),
				zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		principal := &Principal{
			ID:       user.ID.String(),
			Username: user.Username,
			Email:    user.Email,
			Roles:    user.RoleNames(),
		}

		m.logger.Debug("authentication successful",
			zap.String("username", principal.Username))

		next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, principal)))
	})
}

// RequireAuth is a guard for protected routes: without a Principal attached
// by Authenticate it writes a 401 and stops the chain.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := GetPrincipalFromContext(r.Context())
		if principal == nil {
			m.logger.Warn("unauthorized access attempt",
				zap.String("path", r.URL.Path))
			_ = utils.WriteUnauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole is a guard that requires one of the given roles.
// Apply after RequireAuth.
func (m *AuthMiddleware) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := GetPrincipalFromContext(r.Context())
			if principal == nil {
				_ = utils.WriteUnauthorized(w)
				return
			}

			for _, role := range roles {
				if principal.HasRole(role) {
					next.ServeHTTP(w, r)
					return
				}
			}

			m.logger.Warn("insufficient permissions",
				zap.String("username", principal.Username),
				zap.Strings("required_roles", roles),
				zap.Strings("user_roles", principal.Roles))
			_ = utils.WriteForbidden(w, "Insufficient permissions")
		})
	}
}

// extractBearerToken returns the raw token from the Authorization header.
// Anything that does not start with the exact "Bearer " prefix is treated as
// no token at all.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return ""
	}
	return authHeader[len(bearerPrefix):]
}
