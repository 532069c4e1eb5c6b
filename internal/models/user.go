package models

import (
	"time"
)

type UserRole string

const (
	RoleLearner UserRole = "learner"
	RoleAdmin   UserRole = "admin"
)

type User struct {
	ID           uint     `json:"id" gorm:"primaryKey"`
	Username     string   `json:"username" gorm:"not null;size:150;uniqueIndex:idx_users_username"`
	FirstName    string   `json:"first_name" gorm:"size:150"`
	LastName     string   `json:"last_name" gorm:"size:150"`
	PasswordHash string   `json:"-" gorm:"not null;size:255"`
	Role         UserRole `json:"role" gorm:"type:varchar(20);not null;default:learner"`

	// Subject of an external identity provider (Casdoor), nil for local accounts
	ExternalID *string `json:"-" gorm:"size:255;uniqueIndex:idx_users_external_id"`

	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
