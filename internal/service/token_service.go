package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"archipelago-scent/internal/domain"
	"archipelago-scent/internal/repository"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultTokenExpiration is how long an access token stays valid
	DefaultTokenExpiration = 24 * time.Hour

	// TokenType is reported to clients alongside the access token
	TokenType = "bearer"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
)

// UserLookup resolves a token subject to a user record
type UserLookup interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}

// TokenService issues and verifies signed bearer tokens
type TokenService interface {
	Issue(subject string) (string, error)
	Verify(ctx context.Context, tokenString string) (*domain.User, error)
}

// Claims represents the JWT claims; the subject carries the username
type Claims struct {
	jwt.RegisteredClaims
}

type tokenService struct {
	users      UserLookup
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewTokenService creates a new instance of TokenService
func NewTokenService(users UserLookup, secret string, expiration time.Duration) TokenService {
	if expiration <= 0 {
		expiration = DefaultTokenExpiration
	}
	return &tokenService{
		users:      users,
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}
}

// Issue signs an HS256 token for the subject
func (s *tokenService) Issue(subject string) (string, error) {
	issuedAt := s.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Verify validates the token and resolves its subject to a stored user
func (s *tokenService) Verify(ctx context.Context, tokenString string) (*domain.User, error) {
	// Parse and validate the token, accepting HMAC signatures only
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	// Resolve the subject to a stored user
	user, err := s.users.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: subject no longer exists", ErrInvalidToken)
		}
		return nil, fmt.Errorf("failed to resolve token subject: %w", err)
	}

	return user, nil
}
