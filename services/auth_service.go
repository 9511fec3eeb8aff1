package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/diefthyntis/twoaut-auth-api/models"
	"github.com/diefthyntis/twoaut-auth-api/repositories"
)

// TokenIssuer produces a signed bearer token for a subject
type TokenIssuer interface {
	Issue(subject string) (string, error)
}

// dummyHash absorbs a bcrypt comparison when the username does not resolve,
// keeping the work done for unknown-user and wrong-password failures equal.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// SignUpRequest carries the fields needed to register a new user
type SignUpRequest struct {
	Username string
	Email    string
	Password string
	Roles    []string
}

// SignInResult is returned on successful authentication
type SignInResult struct {
	Token    string
	ID       string
	Username string
	Email    string
	Roles    []string
}

// AuthService implements signin and signup on top of the user and role
// repositories, the password hasher, and the token issuer.
type AuthService struct {
	users  repositories.UserRepository
	roles  repositories.RoleRepository
	tx     repositories.TransactionManager
	hasher PasswordHasher
	issuer TokenIssuer
	logger *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users repositories.UserRepository,
	roles repositories.RoleRepository,
	tx repositories.TransactionManager,
	hasher PasswordHasher,
	issuer TokenIssuer,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		roles:  roles,
		tx:     tx,
		hasher: hasher,
		issuer: issuer,
		logger: logger,
	}
}

// SignIn verifies the credentials and issues a token. An unknown username and
// a wrong password both return ErrAuthenticationFailed: callers must not be
// able to tell which check failed.
func (s *AuthService) SignIn(ctx context.Context, username, password string) (*SignInResult, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			_ = s.hasher.Compare(password, dummyHash)
			s.logger.Debug("signin for unknown username", zap.String("username", username))
			return nil, ErrAuthenticationFailed
		}
		s.logger.Error("signin user lookup failed", zap.Error(err))
		return nil, WrapInternal("user lookup failed", err)
	}

	if err := s.hasher.Compare(password, user.PasswordHash); err != nil {
		s.logger.Debug("signin password mismatch", zap.String("username", username))
		return nil, ErrAuthenticationFailed
	}

	tokenString, err := s.issuer.Issue(user.Username)
	if err != nil {
		s.logger.Error("token issuance failed", zap.Error(err))
		return nil, WrapInternal("token issuance failed", err)
	}

	s.logger.Info("user signed in", zap.String("username", user.Username))

	return &SignInResult{
		Token:    tokenString,
		ID:       user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
		Roles:    user.RoleNames(),
	}, nil
}

// SignUp registers a new user. Username uniqueness is checked before email
// uniqueness, which fixes which duplicate error wins when both collide. The
// insert runs inside a transaction and a unique violation that slips past the
// pre-checks maps to the same duplicate errors.
func (s *AuthService) SignUp(ctx context.Context, req SignUpRequest) error {
	taken, err := s.users.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return WrapInternal("username check failed", err)
	}
	if taken {
		return ErrDuplicateUsername
	}

	inUse, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return WrapInternal("email check failed", err)
	}
	if inUse {
		return ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return WrapInternal("password hashing failed", err)
	}

	roles, err := s.resolveRoles(ctx, req.Roles)
	if err != nil {
		return err
	}

	user := models.NewUser(req.Username, req.Email, hash, roles)

	err = s.tx.InTransaction(ctx, func(txCtx context.Context, _ repositories.Transaction) error {
		return s.users.Create(txCtx, user)
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicateUsername):
			return ErrDuplicateUsername
		case errors.Is(err, repositories.ErrDuplicateEmail):
			return ErrDuplicateEmail
		default:
			s.logger.Error("user creation failed", zap.Error(err))
			return WrapInternal("user creation failed", err)
		}
	}

	s.logger.Info("user registered",
		zap.String("username", user.Username),
		zap.Strings("roles", user.RoleNames()))
	return nil
}

// resolveRoles maps requested role keys to role rows. No requested roles
// means the base user role. A role name missing from the roles table is seed
// data gone missing and surfaces as an internal error.
func (s *AuthService) resolveRoles(ctx context.Context, requested []string) ([]models.Role, error) {
	names := make([]models.RoleName, 0, len(requested))
	if len(requested) == 0 {
		names = append(names, models.RoleUser)
	} else {
		seen := make(map[models.RoleName]bool, len(requested))
		for _, key := range requested {
			name := models.RoleNameFromRequest(key)
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}

	roles := make([]models.Role, 0, len(names))
	for _, name := range names {
		role, err := s.roles.GetByName(ctx, name)
		if err != nil {
			if errors.Is(err, repositories.ErrRoleNotFound) {
				s.logger.Error("role seed data missing", zap.String("role", string(name)))
				return nil, ErrRoleNotFound
			}
			return nil, WrapInternal("role lookup failed", err)
		}
		roles = append(roles, *role)
	}
	return roles, nil
}
