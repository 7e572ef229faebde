package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kumpulhq/kumpul-server/internal/store"
)

var (
	// ErrMissingToken is returned when no credential was presented.
	ErrMissingToken = errors.New("missing token")
	// ErrInvalidToken is returned when the credential fails verification.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidCredentials is returned when email/password don't match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken is returned when registering an email already in use.
	ErrEmailTaken = errors.New("email already in use")
	// ErrInvalidInput is returned when a required field is missing or too short.
	ErrInvalidInput = errors.New("invalid input")
)

// TokenPair is an access token plus the refresh token that renews it.
type TokenPair struct {
	Access  string
	Refresh string
}

// Service provides registration, login and token operations.
type Service struct {
	store store.UserStore
	cfg   *JWTConfig
}

// NewService creates an authentication service.
func NewService(userStore store.UserStore, cfg *JWTConfig) *Service {
	return &Service{store: userStore, cfg: cfg}
}

// Register creates a user and returns the user with a fresh token pair.
func (s *Service) Register(ctx context.Context, name, email, password string) (*store.User, *TokenPair, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" || email == "" {
		return nil, nil, ErrInvalidInput
	}
	if len(password) < 6 {
		return nil, nil, ErrInvalidInput
	}

	if existing, err := s.store.GetUserByEmail(ctx, email); err == nil && existing != nil {
		return nil, nil, ErrEmailTaken
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, name, email, hashed)
	if err != nil {
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Login validates credentials and returns the user with a token pair.
func (s *Service) Login(ctx context.Context, email, password string) (*store.User, *TokenPair, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if err := ComparePassword(user.PasswordHash, password); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh validates a refresh token and issues a new access token from the
// identity it carries. No store lookup: the claims are trusted as issued.
func (s *Service) Refresh(refreshToken string) (string, error) {
	claims, err := s.ValidateToken(refreshToken)
	if err != nil {
		return "", err
	}

	access, err := GenerateToken(s.cfg, claims.UserID, claims.Name, claims.Email, s.cfg.AccessTTL)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return access, nil
}

// ValidateToken verifies a token. This is the identity verifier for the
// relay core: pure computation over credential plus secret, no side
// effects. Empty tokens map to ErrMissingToken, anything unverifiable to
// ErrInvalidToken.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}
	claims, err := ValidateToken(s.cfg, tokenString)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return claims, nil
}

func (s *Service) issueTokens(user *store.User) (*TokenPair, error) {
	access, err := GenerateToken(s.cfg, user.ID, user.Name, user.Email, s.cfg.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	refresh, err := GenerateToken(s.cfg, user.ID, user.Name, user.Email, s.cfg.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}
