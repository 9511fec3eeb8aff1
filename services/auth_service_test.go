package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/diefthyntis/twoaut-auth-api/models"
	"github.com/diefthyntis/twoaut-auth-api/repositories"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// MockRoleRepository is a mock implementation of repositories.RoleRepository
type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) GetByName(ctx context.Context, name models.RoleName) (*models.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Role), args.Error(1)
}

func (m *MockRoleRepository) List(ctx context.Context) ([]*models.Role, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Role), args.Error(1)
}

// passthroughTxManager runs the transactional function directly
type passthroughTxManager struct{}

func (passthroughTxManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	return nil, errors.New("not implemented")
}

func (passthroughTxManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	return fn(ctx, nil)
}

// stubIssuer returns a fixed token for any subject
type stubIssuer struct {
	token string
	err   error
}

func (s stubIssuer) Issue(subject string) (string, error) {
	return s.token, s.err
}

func newTestAuthService(users *MockUserRepository, roles *MockRoleRepository, issuer TokenIssuer) *AuthService {
	return NewAuthService(users, roles, passthroughTxManager{}, NewBcryptHasher(), issuer, zap.NewNop())
}

func TestSignIn(t *testing.T) {
	hasher := NewBcryptHasher()
	hash, err := hasher.Hash("correct horse")
	require.NoError(t, err)

	storedUser := func() *models.User {
		return &models.User{
			ID:           uuid.New(),
			Username:     "alice",
			Email:        "alice@example.com",
			PasswordHash: hash,
			Roles:        []models.Role{{ID: 1, Name: models.RoleUser}},
		}
	}

	t.Run("success returns token and identity", func(t *testing.T) {
		users := new(MockUserRepository)
		roles := new(MockRoleRepository)
		svc := newTestAuthService(users, roles, stubIssuer{token: "signed.jwt.token"})

		user := storedUser()
		users.On("GetByUsername", mock.Anything, "alice").Return(user, nil)

		result, err := svc.SignIn(context.Background(), "alice", "correct horse")
		require.NoError(t, err)
		assert.Equal(t, "signed.jwt.token", result.Token)
		assert.Equal(t, user.ID.String(), result.ID)
		assert.Equal(t, "alice", result.Username)
		assert.Equal(t, "alice@example.com", result.Email)
		assert.Equal(t, []string{"ROLE_USER"}, result.Roles)
	})

	t.Run("unknown user and wrong password are indistinguishable", func(t *testing.T) {
		users := new(MockUserRepository)
		roles := new(MockRoleRepository)
		svc := newTestAuthService(users, roles, stubIssuer{token: "unused"})

		users.On("GetByUsername", mock.Anything, "nobody").
			Return(nil, repositories.ErrUserNotFound)
		users.On("GetByUsername", mock.Anything, "alice").Return(storedUser(), nil)

		_, errUnknown := svc.SignIn(context.Background(), "nobody", "whatever")
		_, errWrongPass := svc.SignIn(context.Background(), "alice", "wrong password")

		assert.ErrorIs(t, errUnknown, ErrAuthenticationFailed)
		assert.ErrorIs(t, errWrongPass, ErrAuthenticationFailed)
		assert.Equal(t, errUnknown.Error(), errWrongPass.Error())
	})

	t.Run("repository failure is internal", func(t *testing.T) {
		users := new(MockUserRepository)
		roles := new(MockRoleRepository)
		svc := newTestAuthService(users, roles, stubIssuer{token: "unused"})

		users.On("GetByUsername", mock.Anything, "alice").
			Return(nil, errors.New("connection refused"))

		_, err := svc.SignIn(context.Background(), "alice", "correct horse")
		assert.True(t, IsInternalError(err))
		assert.NotErrorIs(t, err, ErrAuthenticationFailed)
	})

	t.Run("issuer failure is internal", func(t *testing.T) {
		users := new(MockUserRepository)
		roles := new(MockRoleRepository)
		svc := newTestAuthService(users, roles, stubIssuer{err: errors.New("signing failed")})

		users.On("GetByUsername", mock.Anything, "alice").Return(storedUser(), nil)

		_, err := svc.SignIn(context.Background(), "alice", "correct horse")
		assert.True(t, IsInternalError(err))
	})
}

func TestSignUp(t *testing.T) {
	userRole := &models.Role{ID: 1, Name: models.RoleUser}
	adminRole := &models.Role{ID: 3, Name: models.RoleAdmin}

	request := func(roleKeys ...string) SignUpRequest {
		return SignUpRequest{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "secret123",
			Roles:    roleKeys,
		}
	}

	t.Run("registers with default role when none requested", func(t *testing.T) {
		users := new(MockUserRepository)
		roles := new(MockRoleRepository)
		svc := newTestAuthService(users, roles, stubIssuer{})

		users.On("ExistsByUsername", mock.Anything, "alice").Return(false, nil)
		users.On("ExistsByEmail", mock.Anything, "alice@example.com").Return(false, nil)
		roles.On("GetByName", mock.Anything, models.RoleUser).Return(userRole, nil)
		users.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			return u.Username == "alice" &&
				u.Email == "alice@example.com" &&
				u.PasswordHash != "" &&
				u.PasswordHash != "secret123" &&
				len(u.Roles) == 1 &&
				u.Roles[0].Name == models.RoleUser
		})).Return(nil)

		err := svc.SignUp(context.Background(), request())
		require.NoError(t, err)
		users.AssertExpectations(t)
		roles.AssertExpectations(t)
	})

	t.Run("maps role keys and deduplicates them", func(t *testing.T) {
		users := new(MockUserRepository)
		roles := new(MockRoleRepository)
		svc := newTestAuthService(users, roles, stubIssuer{})

		users.On("ExistsByUsername", mock.Anything, "alice").Return(false, nil)
		users.On("ExistsByEmail", mock.Anything, "alice@example.com").Return(false, nil)
		roles.On("GetByName", mock.Anything, models.RoleAdmin).Return(adminRole, nil).Once()
		roles.On("GetByName", mock.Anything, models.RoleUser).Return(userRole, nil).Once()
		users.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			return len(u.Roles) == 2 &&
				u.Roles[0].Name == models.RoleAdmin &&
				u.Roles[1].Name == models.RoleUser
		})).Return(nil)

		err := svc.SignUp(context.Background(), request("admin", "admin", "something-else"))
		require.NoError(t, err)
		roles.AssertExpectations(t)
	})

	t.Run("duplicate username wins over duplicate email", func(t *testing.T) {
		users := new(MockUserRepository)
		roles := new(MockRoleRepository)
		svc := newTestAuthService(users, roles, stubIssuer{})

		users.On("ExistsByUsername", mock.Anything, "alice").Return(true, nil)

		err := svc.SignUp(context.Background(), request())
		assert.ErrorIs(t, err, ErrDuplicateUsername)
		users.AssertNotCalled(t, "ExistsByEmail", mock.Anything, mock.Anything)
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate email", func(t *testing.T) {
		users := new(MockUserRepository)
		roles := new(MockRoleRepository)
		svc := newTestAuthService(users, roles, stubIssuer{})

		users.On("ExistsByUsername", mock.Anything, "alice").Return(false, nil)
		users.On("ExistsByEmail", mock.Anything, "alice@example.com").Return(true, nil)

		err := svc.SignUp(context.Background(), request())
		assert.ErrorIs(t, err, ErrDuplicateEmail)
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unique violation inside transaction maps to duplicate error", func(t *testing.T) {
		users := new(MockUserRepository)
		roles := new(MockRoleRepository)
		svc := newTestAuthService(users, roles, stubIssuer{})

		users.On("ExistsByUsername", mock.Anything, "alice").Return(false, nil)
		users.On("ExistsByEmail", mock.Anything, "alice@example.com").Return(false, nil)
		roles.On("GetByName", mock.Anything, models.RoleUser).Return(userRole, nil)
		users.On("Create", mock.Anything, mock.Anything).
			Return(repositories.ErrDuplicateUsername)

		err := svc.SignUp(context.Background(), request())
		assert.ErrorIs(t, err, ErrDuplicateUsername)
	})

	t.Run("missing role seed data is internal", func(t *testing.T) {
		users := new(MockUserRepository)
		roles := new(MockRoleRepository)
		svc := newTestAuthService(users, roles, stubIssuer{})

		users.On("ExistsByUsername", mock.Anything, "alice").Return(false, nil)
		users.On("ExistsByEmail", mock.Anything, "alice@example.com").Return(false, nil)
		roles.On("GetByName", mock.Anything, models.RoleAdmin).
			Return(nil, repositories.ErrRoleNotFound)

		err := svc.SignUp(context.Background(), request("admin"))
		assert.ErrorIs(t, err, ErrRoleNotFound)
		assert.True(t, IsInternalError(err))
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestBcryptHasher(t *testing.T) {
	hasher := NewBcryptHasher()

	hash, err := hasher.Hash("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.NoError(t, hasher.Compare("secret123", hash))
	assert.Error(t, hasher.Compare("wrong", hash))

	// Same password hashes to different strings because of the salt
	other, err := hasher.Hash("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other)
}
