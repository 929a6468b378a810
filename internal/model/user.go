package model

import (
	"time"

	"gorm.io/gorm"
)

// UserRole is the user's role within the system
type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleOwner    UserRole = "OWNER"
	RoleEmployee UserRole = "EMPLOYEE"
)

// UserStatus is the account status
type UserStatus string

const (
	UserActive   UserStatus = "ACTIVE"
	UserInactive UserStatus = "INACTIVE"
	UserLocked   UserStatus = "LOCKED"
)

// User represents a back-office account. StoreID is nil for system-wide
// ADMIN accounts.
type User struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	StoreID     *uint          `json:"store_id,omitempty" gorm:"index"`
	Username    string         `json:"username" gorm:"type:varchar(30);uniqueIndex;not null"`
	Password    string         `json:"-" gorm:"type:varchar(255);not null"`
	FullName    string         `json:"full_name" gorm:"type:varchar(100);not null"`
	Email       string         `json:"email" gorm:"type:varchar(100)"`
	Phone       string         `json:"phone" gorm:"type:varchar(15)"`
	Role        UserRole       `json:"role" gorm:"type:varchar(20);not null"`
	Status      UserStatus     `json:"status" gorm:"type:varchar(20);default:'ACTIVE'"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// IsActive reports whether the account may authenticate
func (u *User) IsActive() bool {
	return u.Status == UserActive
}
