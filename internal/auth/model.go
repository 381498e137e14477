package auth

import (
	"time"

	"gorm.io/gorm"
)

// Role values stored on the users table. Kept as plain strings, the
// frontend sends and renders them verbatim.
const (
	RoleStudent   = "STUDENT"
	RoleOrganizer = "ORGANIZER"
	RoleAdmin     = "ADMIN"
)

// User represents the users table
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	FullName     string         `gorm:"size:120;not null" json:"fullName"`
	Email        string         `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Role         string         `gorm:"size:20;not null;default:'STUDENT'" json:"role"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// ValidRole reports whether a client-supplied role is one we accept.
func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleOrganizer, RoleAdmin:
		return true
	}
	return false
}
