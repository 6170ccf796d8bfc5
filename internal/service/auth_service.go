package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/akarpov/shortly/internal/models"
)

// UserRepository defines the credential store operations required by AuthService.
type UserRepository interface {
	// Create inserts a new user with an already hashed password and an
	// issued token. Returns database.ErrUsernameExists on a username collision.
	Create(ctx context.Context, username, passwordHash, token string) (*models.User, error)

	// GetByUsername retrieves a user by username.
	// Returns database.ErrUserNotFound if no such user exists.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// GetByToken retrieves the user owning the given token.
	// Returns database.ErrTokenNotFound if no user owns it.
	GetByToken(ctx context.Context, token string) (*models.User, error)
}

// AuthService manages registration, login and token resolution.
type AuthService struct {
	repo       UserRepository
	bcryptCost int
}

func NewAuthService(repo UserRepository, bcryptCost int) *AuthService {
	return &AuthService{
		repo:       repo,
		bcryptCost: bcryptCost,
	}
}

// Register creates a user with a bcrypt-hashed password, issues an opaque
// token bound to the user and returns it.
func (s *AuthService) Register(ctx context.Context, username, password string) (string, error) {
	const op = "service.AuthService.Register"

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	user, err := s.repo.Create(ctx, username, string(hash), uuid.NewString())
	if err != nil {
		return "", fmt.Errorf("%s: failed to register user: %w", op, err)
	}

	return user.Token, nil
}

// Login verifies the credentials and returns the token issued to the user
// at registration. Returns database.ErrUserNotFound on an unknown username
// and bcrypt.ErrMismatchedHashAndPassword on a wrong password.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	const op = "service.AuthService.Login"

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("%s: failed to verify password: %w", op, err)
	}

	return user.Token, nil
}

// Authenticate resolves a bearer token to its owning user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	const op = "service.AuthService.Authenticate"

	user, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve token: %w", op, err)
	}

	return user, nil
}
