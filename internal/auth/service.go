// Package auth handles account registration and session tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"tripledger/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidToken       = errors.New("invalid session token")
)

const (
	minPasswordLength = 8
	sessionDuration   = 24 * time.Hour
)

// UserStore is the subset of the storage repository auth needs.
type UserStore interface {
	CreateUser(ctx context.Context, u storage.User) error
	GetUserByUsername(ctx context.Context, username string) (*storage.User, error)
}

type Service struct {
	users  UserStore
	secret []byte
	now    func() time.Time
}

func NewService(users UserStore, secret string) *Service {
	return &Service{
		users:  users,
		secret: []byte(secret),
		now:    time.Now,
	}
}

// Register creates an account and returns its id.
func (s *Service) Register(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", errors.New("username is required")
	}
	if len(password) < minPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}

	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return "", ErrUsernameTaken
	} else if !errors.Is(err, storage.ErrUserNotFound) {
		return "", fmt.Errorf("check username: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	id := uuid.NewString()
	if err := s.users.CreateUser(ctx, storage.User{
		ID:           id,
		Username:     username,
		PasswordHash: string(hash),
	}); err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

// Login checks the password and returns a signed session token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, storage.ErrUserNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	return s.issueToken(u)
}

func (s *Service) issueToken(u *storage.User) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   u.Username,
		ID:        u.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sessionDuration)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify validates a session token and returns the username it was
// issued to.
func (s *Service) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
