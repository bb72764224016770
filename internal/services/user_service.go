package services

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"herboscope/internal/models"
	"herboscope/internal/repositories"
	apperrors "herboscope/pkg/errors"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const (
	minUsernameLen = 3
	maxUsernameLen = 30
	minPasswordLen = 6
)

// RegisterInput is the data accepted when creating an account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token string
	User  models.PublicUser
}

// UserService handles account registration, login and profile lookups.
type UserService struct {
	userRepo repositories.UserRepository
	auth     *AuthService
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository, auth *AuthService) *UserService {
	return &UserService{
		userRepo: userRepo,
		auth:     auth,
	}
}

// Register validates in, refuses duplicate accounts and a second admin, and
// stores the user with a hashed password. No token is issued.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.PublicUser, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if username == "" || email == "" || in.Password == "" {
		return nil, apperrors.New(apperrors.CodeInvalid, "Username, email and password are required")
	}
	if n := utf8.RuneCountInString(username); n < minUsernameLen || n > maxUsernameLen {
		return nil, apperrors.Newf(apperrors.CodeInvalid, "Username must be between %d and %d characters", minUsernameLen, maxUsernameLen)
	}
	if !emailPattern.MatchString(email) {
		return nil, apperrors.New(apperrors.CodeInvalid, "Please enter a valid email")
	}
	if len(in.Password) < minPasswordLen {
		return nil, apperrors.Newf(apperrors.CodeInvalid, "Password must be at least %d characters", minPasswordLen)
	}

	role := models.RoleUser
	switch models.Role(strings.ToLower(strings.TrimSpace(in.Role))) {
	case "", models.RoleUser:
	case models.RoleAdmin:
		role = models.RoleAdmin
	default:
		return nil, apperrors.Newf(apperrors.CodeInvalid, "Role must be %q or %q", models.RoleUser, models.RoleAdmin)
	}

	if taken, err := s.exists(ctx, email, username); err != nil {
		return nil, err
	} else if taken {
		return nil, apperrors.New(apperrors.CodeAlreadyExists, "User already exists")
	}

	if role == models.RoleAdmin {
		exists, err := s.userRepo.AdminExists(ctx)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperrors.New(apperrors.CodeForbidden, "Admin already exists")
		}
	}

	hash, err := s.auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to register user")
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: hash,
		Role:     role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	public := user.Public()
	return &public, nil
}

// LoginInput identifies an account by email or username. Email wins when
// both are set.
type LoginInput struct {
	Email    string
	Username string
	Password string
}

// Login authenticates by email or username. Unknown accounts and wrong
// passwords yield the same CodeUnauthorized error.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)
	if (email == "" && username == "") || in.Password == "" {
		return nil, apperrors.New(apperrors.CodeInvalid, "Email or username and password are required")
	}

	var (
		user *models.User
		err  error
	)
	if email != "" {
		user, err = s.userRepo.GetByEmail(ctx, email)
	} else {
		user, err = s.userRepo.GetByUsername(ctx, username)
	}
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return nil, apperrors.New(apperrors.CodeUnauthorized, "Invalid credentials")
		}
		return nil, err
	}

	if !s.auth.CheckPassword(user.Password, in.Password) {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "Invalid credentials")
	}

	token, err := s.auth.IssueToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: user.Public()}, nil
}

// Profile returns the sanitized record of userID.
func (s *UserService) Profile(ctx context.Context, userID string) (*models.PublicUser, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	public := user.Public()
	return &public, nil
}

func (s *UserService) exists(ctx context.Context, email, username string) (bool, error) {
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return true, nil
	} else if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		return false, err
	}
	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return true, nil
	} else if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		return false, err
	}
	return false, nil
}
