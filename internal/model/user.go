package model

import "time"

// Roles assignable to a user.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents a stored credential for authentication and authorization.
type User struct {
	ID                  uint       `json:"id" gorm:"primaryKey"`
	Username            string     `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email               *string    `json:"email,omitempty" gorm:"uniqueIndex;size:255"`
	PasswordHash        string     `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Role                string     `json:"role" gorm:"size:20;default:'user'"`
	AccountID           *string    `json:"account_id,omitempty" gorm:"uniqueIndex;size:64"`
	FailedLoginAttempts int        `json:"-" gorm:"default:0"`
	LastLogin           *time.Time `json:"last_login,omitempty"`
	IsLocked            bool       `json:"is_locked" gorm:"default:false"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}
