package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/diefthyntis/twoaut-auth-api/models"
	"github.com/diefthyntis/twoaut-auth-api/repositories"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint breach
const uniqueViolation = "23505"

// UserRepository implements the repositories.UserRepository interface
type UserRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB, logger *zap.Logger) repositories.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// Create persists a new user and its role assignments. A unique violation on
// username or email maps to the matching duplicate sentinel, so a signup that
// races the pre-checks still surfaces as a duplicate rather than a 500.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if dup := duplicateError(err); dup != nil {
			return dup
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	for _, role := range user.Roles {
		_, err := executor.ExecContext(ctx,
			`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)`,
			user.ID, role.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to assign role %s: %w", role.Name, err)
		}
	}

	r.logger.Debug("user created",
		zap.String("id", user.ID.String()),
		zap.String("username", user.Username))
	return nil
}

// GetByID retrieves a user with roles by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, `WHERE u.id = $1`, id)
}

// GetByUsername retrieves a user with roles by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, `WHERE u.username = $1`, username)
}

// ExistsByUsername reports whether a user with the username exists
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username)
}

// ExistsByEmail reports whether a user with the email exists
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *UserRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	executor := GetExecutor(ctx, r.db)

	var exists bool
	if err := executor.QueryRowContext(ctx, query, arg).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return exists, nil
}

// getOne loads the user row and its roles in a single join query. The left
// join keeps a roleless row visible; Roles stays empty in that case.
func (r *UserRepository) getOne(ctx context.Context, where string, arg any) (*models.User, error) {
	query := `
		SELECT u.id, u.username, u.email, u.password_hash, u.created_at, u.updated_at,
		       ro.id, ro.name
		FROM users u
		LEFT JOIN user_roles ur ON ur.user_id = u.id
		LEFT JOIN roles ro ON ro.id = ur.role_id
	` + where

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	defer rows.Close()

	var user *models.User
	for rows.Next() {
		var (
			u        models.User
			roleID   sql.NullInt64
			roleName sql.NullString
		)
		err := rows.Scan(
			&u.ID,
			&u.Username,
			&u.Email,
			&u.PasswordHash,
			&u.CreatedAt,
			&u.UpdatedAt,
			&roleID,
			&roleName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}

		if user == nil {
			user = &u
		}
		if roleID.Valid && roleName.Valid {
			user.Roles = append(user.Roles, models.Role{
				ID:   int(roleID.Int64),
				Name: models.RoleName(roleName.String),
			})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	if user == nil {
		return nil, repositories.ErrUserNotFound
	}
	return user, nil
}

// duplicateError maps a pq unique violation to the matching sentinel, keyed
// by the constraint that fired. Returns nil for unrelated errors.
func duplicateError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != uniqueViolation {
		return nil
	}
	switch pqErr.Constraint {
	case "users_username_key":
		return repositories.ErrDuplicateUsername
	case "users_email_key":
		return repositories.ErrDuplicateEmail
	default:
		return nil
	}
}
