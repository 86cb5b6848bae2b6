package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Service handles registration, login and token verification.
type Service struct {
	storage  Storage
	logger   *zap.Logger
	secret   []byte
	tokenTTL time.Duration
}

// NewService creates a new Service signing tokens with secret.
func NewService(storage Storage, logger *zap.Logger, secret string, tokenTTL time.Duration) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Service{
		storage:  storage,
		logger:   logger,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

type claims struct {
	jwt.RegisteredClaims
}

// Register creates a user with a bcrypt-hashed password.
func (s *Service) Register(email, password string) (*User, error) {
	if _, err := s.storage.ByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &User{Email: email, PasswordHash: string(hash)}
	if err := s.storage.Create(user); err != nil {
		s.logger.Error("failed to create user", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.Info("user registered", zap.Uint("user_id", user.ID))
	return user, nil
}

// Login verifies the credentials and returns a signed bearer token.
func (s *Service) Login(email, password string) (string, error) {
	user, err := s.storage.ByEmail(email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// UserFromToken parses and verifies a bearer token and loads its user.
func (s *Service) UserFromToken(tokenString string) (*User, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidCredentials
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || c.Subject == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.storage.ByEmail(c.Subject)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
