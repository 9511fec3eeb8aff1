package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/diefthyntis/twoaut-auth-api/config"
	"github.com/diefthyntis/twoaut-auth-api/middleware"
	"github.com/diefthyntis/twoaut-auth-api/repositories"
	"github.com/diefthyntis/twoaut-auth-api/repositories/postgres"
	"github.com/diefthyntis/twoaut-auth-api/services"
	"github.com/diefthyntis/twoaut-auth-api/token"
)

// AuthService is the surface the signin/signup handlers need
type AuthService interface {
	SignIn(ctx context.Context, username, password string) (*services.SignInResult, error)
	SignUp(ctx context.Context, req services.SignUpRequest) error
}

// Dependencies holds all application dependencies.
// This is the central wiring point: every collaborator is passed in
// explicitly at startup, nothing is resolved from globals.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Users repositories.UserRepository
	Roles repositories.RoleRepository

	// Auth
	Tokens         *token.Codec
	Auth           AuthService
	AuthMiddleware *middleware.AuthMiddleware
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := deps.initAuth(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the PostgreSQL connection, schema, and repositories
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	factory, err := postgres.NewRepositoryFactory(cfg, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}

	d.RepoFactory = factory
	d.DB = factory.GetDB()

	if err := factory.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	repos := factory.NewRepositories()
	d.Users = repos.Users
	d.Roles = repos.Roles

	d.Logger.Info("repositories initialized")
	return nil
}

// initAuth builds the token codec, the auth service, and the middleware
func (d *Dependencies) initAuth(cfg *config.Config) error {
	codec, err := token.NewCodec(cfg.JWT, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create token codec: %w", err)
	}
	d.Tokens = codec

	d.Auth = services.NewAuthService(
		d.Users,
		d.Roles,
		d.RepoFactory.GetTransactionManager(),
		services.NewBcryptHasher(),
		codec,
		d.Logger,
	)

	d.AuthMiddleware = middleware.NewAuthMiddleware(codec, d.Users, d.Logger)

	d.Logger.Info("auth initialized")
	return nil
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
