package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/akarpov/shortly/internal/database"
	"github.com/akarpov/shortly/internal/models"
)

type MockUserRepository struct {
	mock.Mock
}

func (r *MockUserRepository) Create(ctx context.Context, username, passwordHash, token string) (*models.User, error) {
	args := r.Called(ctx, username, passwordHash, token)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (r *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := r.Called(ctx, username)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (r *MockUserRepository) GetByToken(ctx context.Context, token string) (*models.User, error) {
	args := r.Called(ctx, token)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func TestAuthService_Register(t *testing.T) {
	t.Run("username exists", func(t *testing.T) {
		repoMock := new(MockUserRepository)
		repoMock.On("Create", mock.Anything, "alice", mock.Anything, mock.Anything).
			Return(nil, database.ErrUsernameExists).Once()

		svc := NewAuthService(repoMock, bcrypt.MinCost)
		token, err := svc.Register(context.TODO(), "alice", "secret123")

		assert.Error(t, err)
		assert.ErrorIs(t, err, database.ErrUsernameExists)
		assert.Empty(t, token)
		repoMock.AssertExpectations(t)
	})

	t.Run("success", func(t *testing.T) {
		repoMock := new(MockUserRepository)
		repoMock.On("Create", mock.Anything, "alice", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				hash := args.String(2)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret123")))
				assert.NotEmpty(t, args.String(3))
			}).
			Return(&models.User{ID: 1, Username: "alice", Token: "token1"}, nil).Once()

		svc := NewAuthService(repoMock, bcrypt.MinCost)
		token, err := svc.Register(context.TODO(), "alice", "secret123")

		assert.NoError(t, err)
		assert.Equal(t, "token1", token)
		repoMock.AssertExpectations(t)
	})
}

func TestAuthService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	user := &models.User{
		ID:           1,
		Username:     "alice",
		PasswordHash: string(hash),
		Token:        "token1",
	}

	t.Run("unknown username", func(t *testing.T) {
		repoMock := new(MockUserRepository)
		repoMock.On("GetByUsername", mock.Anything, "bob").
			Return(nil, database.ErrUserNotFound).Once()

		svc := NewAuthService(repoMock, bcrypt.MinCost)
		token, err := svc.Login(context.TODO(), "bob", "secret123")

		assert.Error(t, err)
		assert.ErrorIs(t, err, database.ErrUserNotFound)
		assert.Empty(t, token)
		repoMock.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		repoMock := new(MockUserRepository)
		repoMock.On("GetByUsername", mock.Anything, "alice").
			Return(user, nil).Once()

		svc := NewAuthService(repoMock, bcrypt.MinCost)
		token, err := svc.Login(context.TODO(), "alice", "wrong-password")

		assert.Error(t, err)
		assert.ErrorIs(t, err, bcrypt.ErrMismatchedHashAndPassword)
		assert.Empty(t, token)
		repoMock.AssertExpectations(t)
	})

	t.Run("success returns existing token", func(t *testing.T) {
		repoMock := new(MockUserRepository)
		repoMock.On("GetByUsername", mock.Anything, "alice").
			Return(user, nil).Once()

		svc := NewAuthService(repoMock, bcrypt.MinCost)
		token, err := svc.Login(context.TODO(), "alice", "secret123")

		assert.NoError(t, err)
		assert.Equal(t, "token1", token)
		repoMock.AssertExpectations(t)
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	t.Run("unknown token", func(t *testing.T) {
		repoMock := new(MockUserRepository)
		repoMock.On("GetByToken", mock.Anything, "bad-token").
			Return(nil, database.ErrTokenNotFound).Once()

		svc := NewAuthService(repoMock, bcrypt.MinCost)
		user, err := svc.Authenticate(context.TODO(), "bad-token")

		assert.Error(t, err)
		assert.ErrorIs(t, err, database.ErrTokenNotFound)
		assert.Nil(t, user)
		repoMock.AssertExpectations(t)
	})

	t.Run("unknown error", func(t *testing.T) {
		errUnknown := errors.New("unknown error")

		repoMock := new(MockUserRepository)
		repoMock.On("GetByToken", mock.Anything, "token1").
			Return(nil, errUnknown).Once()

		svc := NewAuthService(repoMock, bcrypt.MinCost)
		user, err := svc.Authenticate(context.TODO(), "token1")

		assert.Error(t, err)
		assert.ErrorIs(t, err, errUnknown)
		assert.Nil(t, user)
		repoMock.AssertExpectations(t)
	})

	t.Run("success", func(t *testing.T) {
		want := &models.User{ID: 1, Username: "alice", Token: "token1"}

		repoMock := new(MockUserRepository)
		repoMock.On("GetByToken", mock.Anything, "token1").
			Return(want, nil).Once()

		svc := NewAuthService(repoMock, bcrypt.MinCost)
		user, err := svc.Authenticate(context.TODO(), "token1")

		assert.NoError(t, err)
		assert.Equal(t, want, user)
		repoMock.AssertExpectations(t)
	})
}
