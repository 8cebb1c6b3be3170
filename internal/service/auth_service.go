package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"fleetreport/internal/auth"
	apperrors "fleetreport/internal/errors"
	"fleetreport/internal/model"
	"fleetreport/internal/repository"
)

const (
	bcryptCost      = 10
	maxFailedLogins = 5
)

// AuthService handles authentication and user provisioning.
type AuthService interface {
	Login(ctx context.Context, username, password string) (token string, user *model.User, err error)
	RegisterUser(ctx context.Context, username, password, role string, email *string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ListUsers(ctx context.Context, offset, limit int) ([]model.User, error)
}

type authService struct {
	users      repository.UserRepository
	jwtService *auth.JWTService
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, jwtService *auth.JWTService) AuthService {
	return &authService{
		users:      users,
		jwtService: jwtService,
	}
}

// Login authenticates a user and issues a signed access token.
func (s *authService) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	user, err := s.authenticate(ctx, username, password)
	if err != nil {
		return "", nil, err
	}

	token, err := s.jwtService.Generate(user.Username, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, user, nil
}

// authenticate verifies the password against the stored bcrypt hash. Unknown
// usernames and hash mismatches fail with the same error. Five consecutive
// failures lock the account until an admin re-provisions it.
func (s *authService) authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if user.IsLocked {
		return nil, apperrors.ErrAccountLocked
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		user.FailedLoginAttempts++
		if user.FailedLoginAttempts >= maxFailedLogins {
			user.IsLocked = true
			log.Printf("account %q locked after %d failed logins", user.Username, user.FailedLoginAttempts)
		}
		if err := s.users.Save(ctx, user); err != nil {
			log.Printf("record failed login for %q: %v", user.Username, err)
		}
		return nil, apperrors.ErrInvalidCredentials
	}

	now := time.Now()
	user.FailedLoginAttempts = 0
	user.LastLogin = &now
	if err := s.users.Save(ctx, user); err != nil {
		log.Printf("record login for %q: %v", user.Username, err)
	}
	return user, nil
}

// RegisterUser creates a user with a hashed password and a provisioned
// account identifier. Username and email must be unused.
func (s *authService) RegisterUser(ctx context.Context, username, password, role string, email *string) (*model.User, error) {
	if role != model.RoleAdmin && role != model.RoleUser {
		return nil, fmt.Errorf("%w: role must be admin or user", apperrors.ErrInvalidParameter)
	}

	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, apperrors.ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	if email != nil {
		if _, err := s.users.FindByEmail(ctx, *email); err == nil {
			return nil, apperrors.ErrUserExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("check email: %w", err)
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	accountID := newAccountID(role)
	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         role,
		AccountID:    &accountID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *authService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *authService) ListUsers(ctx context.Context, offset, limit int) ([]model.User, error) {
	if offset < 0 || limit < 0 {
		return nil, fmt.Errorf("%w: offset and limit must be non-negative", apperrors.ErrInvalidParameter)
	}
	if limit == 0 {
		limit = 100
	}
	return s.users.List(ctx, offset, limit)
}

// newAccountID provisions a short role-prefixed account identifier.
func newAccountID(role string) string {
	prefix := "USE-"
	if role == model.RoleAdmin {
		prefix = "ADM-"
	}
	return prefix + strings.ToUpper(uuid.NewString()[:8])
}
