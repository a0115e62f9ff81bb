package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"archipelago-scent/internal/domain"
	"archipelago-scent/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// AuthService defines the interface for account business logic
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (string, error)
	Login(ctx context.Context, username, password string) (string, error)
}

type authService struct {
	userRepo repository.UserRepository
	tokens   TokenService
}

// NewAuthService creates a new instance of AuthService
func NewAuthService(userRepo repository.UserRepository, tokens TokenService) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// Register creates a new account with a hashed password
func (s *authService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	// Check if user already exists
	existingUser, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, repository.ErrUserAlreadyExists
	}

	// Hash the password with bcrypt
	hashedPassword, err := s.hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Create user entity
	user := &domain.User{
		ID:        uuid.New().String(),
		Username:  username,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}

	// Save to database; the unique index still catches a concurrent registration of the same name
	if err := s.userRepo.Create(ctx, user, hashedPassword); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate checks the credentials and returns the token subject
func (s *authService) Authenticate(ctx context.Context, username, password string) (string, error) {
	// Find user by username
	user, hash, err := s.userRepo.FindCredentials(ctx, username)
	if err != nil {
		// Unknown users get the same answer as a wrong password
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	// Verify password
	if err := s.verifyPassword(hash, password); err != nil {
		return "", ErrInvalidCredentials
	}

	return user.Username, nil
}

// Login authenticates the user and issues an access token
func (s *authService) Login(ctx context.Context, username, password string) (string, error) {
	// Check credentials
	subject, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}

	// Generate access token
	accessToken, err := s.tokens.Issue(subject)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}

	return accessToken, nil
}

func (s *authService) hashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *authService) verifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
