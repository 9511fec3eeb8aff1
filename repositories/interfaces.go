package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/diefthyntis/twoaut-auth-api/models"
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// UserRepository handles user data operations
type UserRepository interface {
	// Create persists a new user and its role assignments
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user with roles by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByUsername retrieves a user with roles by username
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// ExistsByUsername reports whether a user with the username exists
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail reports whether a user with the email exists
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RoleRepository handles role seed data lookups
type RoleRepository interface {
	// GetByName retrieves a role by its name
	GetByName(ctx context.Context, name models.RoleName) (*models.Role, error)

	// List retrieves all roles
	List(ctx context.Context) ([]*models.Role, error)
}

// Repositories bundles every repository implementation
type Repositories struct {
	Users UserRepository
	Roles RoleRepository
}
