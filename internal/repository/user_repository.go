package repository

import (
	"context"
	"errors"
	"fmt"

	"archipelago-scent/internal/database"
	"archipelago-scent/internal/domain"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user with this username already exists")
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, user *domain.User, passwordHash string) error
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindCredentials(ctx context.Context, username string) (*domain.User, string, error)
}

// userDocument is the stored shape of a user; the hash stays inside this package
type userDocument struct {
	domain.User `bson:",inline"`
	Password    string `json:"password" bson:"password"`
}

type userRepository struct {
	users database.Collection
}

// NewUserRepository creates a new instance of UserRepository
func NewUserRepository(store database.Store) UserRepository {
	return &userRepository{users: store.Collection(database.UsersCollection)}
}

// Create stores the public user record together with its password hash
func (r *userRepository) Create(ctx context.Context, user *domain.User, passwordHash string) error {
	doc := userDocument{User: *user, Password: passwordHash}

	if err := r.users.Insert(ctx, doc); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// FindByUsername retrieves the public user record
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, _, err := r.FindCredentials(ctx, username)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// FindCredentials retrieves a user along with the stored password hash
func (r *userRepository) FindCredentials(ctx context.Context, username string) (*domain.User, string, error) {
	var doc userDocument
	if err := r.users.FindOne(ctx, database.Filter{"username": username}, &doc); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", fmt.Errorf("failed to find user by username: %w", err)
	}

	user := doc.User
	return &user, doc.Password, nil
}
