package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"archipelago-scent/internal/database"
	"archipelago-scent/internal/domain"
	"archipelago-scent/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

// Mock lookup for token tests
type mockUserLookup struct {
	users map[string]*domain.User
}

func newMockUserLookup(usernames ...string) *mockUserLookup {
	m := &mockUserLookup{users: make(map[string]*domain.User)}
	for _, username := range usernames {
		m.users[username] = &domain.User{ID: "id-" + username, Username: username}
	}
	return m
}

func (m *mockUserLookup) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, exists := m.users[username]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func newTestAuth() (AuthService, TokenService, repository.UserRepository) {
	userRepo := repository.NewUserRepository(database.NewMemoryStore())
	tokens := NewTokenService(userRepo, testSecret, DefaultTokenExpiration)
	return NewAuthService(userRepo, tokens), tokens, userRepo
}

// Feature: storefront, Property 1: Registration hashes passwords and rejects duplicates
func TestProperty_RegistrationHashesAndRejectsDuplicates(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 10
	properties := gopter.NewProperties(parameters)

	properties.Property("second registration conflicts and the stored hash is never the plaintext", prop.ForAll(
		func(username string, email string, password string) bool {
			auth, _, userRepo := newTestAuth()
			ctx := context.Background()

			if _, err := auth.Register(ctx, username, email, password); err != nil {
				t.Logf("FAIL: Registration failed: %v", err)
				return false
			}

			_, err := auth.Register(ctx, username, "other@example.com", password+"x")
			if !errors.Is(err, repository.ErrUserAlreadyExists) {
				t.Logf("FAIL: Expected conflict, got %v", err)
				return false
			}

			_, hash, err := userRepo.FindCredentials(ctx, username)
			if err != nil {
				t.Logf("FAIL: Failed to load credentials: %v", err)
				return false
			}

			if hash == password {
				t.Logf("FAIL: Password stored as plaintext for %s", username)
				return false
			}

			if cost, err := bcrypt.Cost([]byte(hash)); err != nil || cost != BcryptCost {
				t.Logf("FAIL: Unexpected bcrypt cost %d: %v", cost, err)
				return false
			}

			return true
		},
		gen.RegexMatch(`[a-z]{4,12}`),
		gen.RegexMatch(`[a-z]{5,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: storefront, Property 2: Login then verify yields the same user
func TestProperty_LoginTokenResolvesToSameUser(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 10
	properties := gopter.NewProperties(parameters)

	properties.Property("the issued token resolves to the logged in username", prop.ForAll(
		func(username string, password string) bool {
			auth, tokens, _ := newTestAuth()
			ctx := context.Background()

			if _, err := auth.Register(ctx, username, "admin@example.com", password); err != nil {
				t.Logf("FAIL: Registration failed: %v", err)
				return false
			}

			accessToken, err := auth.Login(ctx, username, password)
			if err != nil {
				t.Logf("FAIL: Login failed: %v", err)
				return false
			}

			user, err := tokens.Verify(ctx, accessToken)
			if err != nil {
				t.Logf("FAIL: Verify failed: %v", err)
				return false
			}

			return user.Username == username
		},
		gen.RegexMatch(`[a-z]{4,12}`),
		gen.RegexMatch(`[A-Za-z0-9]{8,20}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestAuthService_BadCredentials(t *testing.T) {
	auth, _, _ := newTestAuth()
	ctx := context.Background()

	_, err := auth.Register(ctx, "curator", "curator@example.com", "correct-horse")
	require.NoError(t, err)

	_, err = auth.Login(ctx, "curator", "wrong-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Login(ctx, "nobody", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	subject, err := auth.Authenticate(ctx, "curator", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "curator", subject)
}

func TestTokenService_IssueCarriesSubjectAndExpiry(t *testing.T) {
	tokens := NewTokenService(newMockUserLookup("curator"), testSecret, 0)

	tokenString, err := tokens.Issue("curator")
	require.NoError(t, err)

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)

	assert.Equal(t, "curator", claims.Subject)
	assert.WithinDuration(t, claims.IssuedAt.Add(DefaultTokenExpiration), claims.ExpiresAt.Time, time.Second)
}

func TestTokenService_RejectsExpiredToken(t *testing.T) {
	lookup := newMockUserLookup("curator")
	issuer := &tokenService{
		users:      lookup,
		secret:     []byte(testSecret),
		expiration: DefaultTokenExpiration,
		now:        func() time.Time { return time.Now().Add(-25 * time.Hour) },
	}

	tokenString, err := issuer.Issue("curator")
	require.NoError(t, err)

	_, err = NewTokenService(lookup, testSecret, DefaultTokenExpiration).Verify(context.Background(), tokenString)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenService_RejectsInvalidTokens(t *testing.T) {
	ctx := context.Background()
	tokens := NewTokenService(newMockUserLookup("curator"), testSecret, DefaultTokenExpiration)

	forged, err := NewTokenService(newMockUserLookup("curator"), "other-secret", DefaultTokenExpiration).Issue("curator")
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "curator",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	orphan, err := tokens.Issue("ghost")
	require.NoError(t, err)

	noSubject, err := tokens.Issue("")
	require.NoError(t, err)

	cases := map[string]string{
		"malformed":      "not-a-token",
		"wrong secret":   forged,
		"none algorithm": unsigned,
		"unknown user":   orphan,
		"no subject":     noSubject,
	}

	for name, tokenString := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := tokens.Verify(ctx, tokenString)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
