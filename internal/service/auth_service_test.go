package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"fleetreport/internal/auth"
	apperrors "fleetreport/internal/errors"
	"fleetreport/internal/model"
)

func testJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret", time.Hour)
}

func TestAuthService_Login(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), 10)

	tests := []struct {
		name          string
		username      string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful login",
			username: "driver1",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "driver1").Return(&model.User{
					Username:     "driver1",
					PasswordHash: string(hashed),
					Role:         model.RoleUser,
				}, nil)
				m.On("Save", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:     "unknown username",
			username: "nobody",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "nobody").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			username: "driver1",
			password: "wrong",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "driver1").Return(&model.User{
					Username:     "driver1",
					PasswordHash: string(hashed),
					Role:         model.RoleUser,
				}, nil)
				m.On("Save", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "locked account",
			username: "driver1",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "driver1").Return(&model.User{
					Username:     "driver1",
					PasswordHash: string(hashed),
					Role:         model.RoleUser,
					IsLocked:     true,
				}, nil)
			},
			expectedError: apperrors.ErrAccountLocked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := NewAuthService(mockRepo, testJWTService())
			token, user, err := svc.Login(context.Background(), tt.username, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Empty(t, token)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, token)
				assert.NotNil(t, user)
				assert.Equal(t, tt.username, user.Username)
				assert.Zero(t, user.FailedLoginAttempts)
				assert.NotNil(t, user.LastLogin)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_LoginLocksAfterRepeatedFailures(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), 10)
	user := &model.User{
		Username:            "driver1",
		PasswordHash:        string(hashed),
		Role:                model.RoleUser,
		FailedLoginAttempts: 4,
	}

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByUsername", mock.Anything, "driver1").Return(user, nil)
	mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	svc := NewAuthService(mockRepo, testJWTService())
	_, _, err := svc.Login(context.Background(), "driver1", "wrong")

	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	assert.True(t, user.IsLocked)
	assert.Equal(t, 5, user.FailedLoginAttempts)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_RegisterUser(t *testing.T) {
	email := "new@example.com"

	tests := []struct {
		name          string
		username      string
		role          string
		email         *string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful registration",
			username: "newuser",
			role:     model.RoleUser,
			email:    &email,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "newuser").Return(nil, gorm.ErrRecordNotFound)
				m.On("FindByEmail", mock.Anything, email).Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:     "username taken",
			username: "existing",
			role:     model.RoleUser,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "existing").Return(&model.User{Username: "existing"}, nil)
			},
			expectedError: apperrors.ErrUserExists,
		},
		{
			name:          "invalid role",
			username:      "newuser",
			role:          "superuser",
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrInvalidParameter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := NewAuthService(mockRepo, testJWTService())
			user, err := svc.RegisterUser(context.Background(), tt.username, "password123", tt.role, tt.email)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.Equal(t, tt.username, user.Username)
				assert.NotEmpty(t, user.PasswordHash)
				assert.NotEqual(t, "password123", user.PasswordHash)
				assert.NotNil(t, user.AccountID)
				assert.Contains(t, *user.AccountID, "USE-")
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_ListUsers(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("List", mock.Anything, 0, 100).Return([]model.User{{Username: "a"}}, nil)

	svc := NewAuthService(mockRepo, testJWTService())

	users, err := svc.ListUsers(context.Background(), 0, 0)
	assert.NoError(t, err)
	assert.Len(t, users, 1)

	_, err = svc.ListUsers(context.Background(), -1, 10)
	assert.ErrorIs(t, err, apperrors.ErrInvalidParameter)

	mockRepo.AssertExpectations(t)
}
