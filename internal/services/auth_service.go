package services

import (
	"context"
	"fmt"
	"time"

	"herboscope/internal/models"
	"herboscope/internal/repositories"
	apperrors "herboscope/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// DefaultTokenTTL is how long an issued token stays valid when no TTL is
// configured.
const DefaultTokenTTL = time.Hour

// Claims is the token payload: the user id plus the expiry.
type Claims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

// AuthService issues and verifies bearer tokens and hashes passwords.
type AuthService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewAuthService creates a new AuthService. A non-positive ttl falls back to
// DefaultTokenTTL.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  ttl,
		now:       time.Now,
	}
}

// SetClock replaces the time source used for issuing and checking expiry.
func (s *AuthService) SetClock(now func() time.Time) {
	s.now = now
}

// IssueToken signs an HS256 token for userID expiring after the configured
// TTL. The output is a pure function of secret, userID and the clock.
func (s *AuthService) IssueToken(userID string) (string, error) {
	claims := Claims{
		ID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(s.now().Add(s.tokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeInternal, "failed to generate token")
	}
	return token, nil
}

// VerifyToken checks signature, algorithm and expiry of tokenString and
// resolves the user it names. Token problems and unknown users are reported
// as CodeUnauthorized.
func (s *AuthService) VerifyToken(ctx context.Context, tokenString string) (*models.User, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeUnauthorized, "Invalid or expired token")
	}
	if claims.ID == "" {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "Invalid or expired token")
	}

	user, err := s.userRepo.GetByID(ctx, claims.ID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return nil, apperrors.Wrap(err, apperrors.CodeUnauthorized, "User not found")
		}
		return nil, err
	}
	return user, nil
}

// HashPassword returns the bcrypt hash of password.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func (s *AuthService) CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
