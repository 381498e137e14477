package auth

import (
	"strings"

	"gorm.io/gorm"
)

type Repository interface {
	Create(user *User) error
	FindByEmail(email string) (*User, error)
	FindByID(userID uint) (User, error)
	Update(user *User) error
	UpdatePasswordHash(userID uint, hash string) error
	EmailExists(email string) (bool, error)
	CountUsers() (int64, error)
}

type repository struct{ db *gorm.DB }

func NewRepository(db *gorm.DB) Repository {
	return &repository{db}
}

// Create a new user
func (r *repository) Create(user *User) error {
	return r.db.Create(user).Error
}

// Find user by email (used in login & password reset)
func (r *repository) FindByEmail(email string) (*User, error) {
	var u User
	err := r.db.Where("LOWER(email) = ?", strings.ToLower(email)).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Find user by ID
func (r *repository) FindByID(userID uint) (User, error) {
	var user User
	err := r.db.First(&user, userID).Error
	return user, err
}

func (r *repository) Update(user *User) error {
	return r.db.Save(user).Error
}

// UpdatePasswordHash writes only the hash, used by the reset flow
func (r *repository) UpdatePasswordHash(userID uint, hash string) error {
	return r.db.Model(&User{}).Where("id = ?", userID).Update("password_hash", hash).Error
}

func (r *repository) EmailExists(email string) (bool, error) {
	var count int64
	err := r.db.Model(&User{}).Where("LOWER(email) = ?", strings.ToLower(email)).Count(&count).Error
	return count > 0, err
}

// CountUsers for the admin overview
func (r *repository) CountUsers() (int64, error) {
	var count int64
	err := r.db.Model(&User{}).Count(&count).Error
	return count, err
}
