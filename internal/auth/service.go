package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/adityan21/campus-event-backend/config"
	"github.com/adityan21/campus-event-backend/internal/auditlog"
	"github.com/adityan21/campus-event-backend/utils"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

const resetTokenTTL = 30 * time.Minute

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Service interface {
	Register(ctx context.Context, input RegisterInput, ip string) (*TokenPair, *User, error)
	Login(ctx context.Context, input LoginInput, ip string) (*TokenPair, *User, error)
	Refresh(refreshToken string) (string, error)
	GetUserByID(userID uint) (User, error)

	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword, ip string) error
	Logout() error
}

type service struct {
	repo          Repository
	auditSvc      auditlog.Service
	accessSecret  string
	refreshSecret string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewService(r Repository, auditSvc auditlog.Service, cfg *config.Config) Service {
	return &service{
		repo:          r,
		auditSvc:      auditSvc,
		accessSecret:  cfg.JWTAccessSecret,
		refreshSecret: cfg.JWTRefreshSecret,
		accessTTL:     time.Duration(cfg.JWTAccessTTLHours) * time.Hour,
		refreshTTL:    time.Duration(cfg.JWTRefreshTTLHours) * time.Hour,
	}
}

// =============================
// Register
// =============================

type RegisterInput struct {
	FullName string
	Email    string
	Password string
	Role     string
}

func (s *service) Register(ctx context.Context, in RegisterInput, ip string) (*TokenPair, *User, error) {
	taken, err := s.repo.EmailExists(in.Email)
	if err != nil {
		return nil, nil, err
	}
	if taken {
		return nil, nil, ErrEmailTaken
	}

	role := in.Role
	if role == "" {
		role = RoleStudent
	}
	if !ValidRole(role) {
		return nil, nil, errors.New("invalid role")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	user := &User{
		FullName:     in.FullName,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.repo.Create(user); err != nil {
		return nil, nil, err
	}

	s.audit(ctx, &user.ID, auditlog.ActionRegisterUser, map[string]interface{}{"email": user.Email, "role": user.Role}, ip, "success")

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return tokens, user, nil
}

// =============================
// Login
// =============================

type LoginInput struct {
	Email    string
	Password string
}

func (s *service) Login(ctx context.Context, in LoginInput, ip string) (*TokenPair, *User, error) {
	user, err := s.repo.FindByEmail(in.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.audit(ctx, nil, auditlog.ActionLogin, map[string]interface{}{"email": in.Email}, ip, "failure")
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		s.audit(ctx, &user.ID, auditlog.ActionLogin, map[string]interface{}{"email": in.Email}, ip, "failure")
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	s.audit(ctx, &user.ID, auditlog.ActionLogin, map[string]interface{}{"email": user.Email}, ip, "success")
	return tokens, user, nil
}

func (s *service) issueTokens(user *User) (*TokenPair, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateRefreshToken(user)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *service) generateAccessToken(user *User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     time.Now().Add(s.accessTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.accessSecret))
}

func (s *service) generateRefreshToken(user *User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     time.Now().Add(s.refreshTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.refreshSecret))
}

// =============================
// Refresh
// =============================

func (s *service) Refresh(refreshToken string) (string, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.refreshSecret), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid refresh token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["user_id"] == nil {
		return "", errors.New("invalid token claims")
	}

	userID := uint(claims["user_id"].(float64))
	user, err := s.repo.FindByID(userID)
	if err != nil {
		return "", ErrUserNotFound
	}

	return s.generateAccessToken(&user)
}

// =============================
// Forgot Password
// =============================

func (s *service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	resetToken := generateSecureToken()
	if err := utils.SetResetToken(ctx, resetToken, user.Email, resetTokenTTL); err != nil {
		return fmt.Errorf("could not save reset token: %w", err)
	}

	if err := utils.SendResetLink(user.Email, resetToken); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func (s *service) ResetPassword(ctx context.Context, token, newPassword, ip string) error {
	email, err := utils.GetResetToken(ctx, token)
	if err != nil {
		return ErrInvalidResetToken
	}

	user, err := s.repo.FindByEmail(email)
	if err != nil {
		return ErrUserNotFound
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePasswordHash(user.ID, string(hash)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	_ = utils.DeleteResetToken(ctx, token) // token is single use

	s.audit(ctx, &user.ID, auditlog.ActionPasswordReset, map[string]interface{}{"email": user.Email}, ip, "success")
	return nil
}

// =============================
// Logout
// =============================

func (s *service) Logout() error {
	// JWT is stateless — frontend should just clear token
	return nil
}

// =============================
// Get User By ID
// =============================

func (s *service) GetUserByID(userID uint) (User, error) {
	return s.repo.FindByID(userID)
}

// =============================
// Helpers
// =============================

func (s *service) audit(ctx context.Context, userID *uint, action string, details map[string]interface{}, ip, status string) {
	if s.auditSvc == nil {
		return
	}
	if err := s.auditSvc.LogAction(ctx, userID, nil, action, details, ip, status); err != nil {
		fmt.Printf("⚠️ Failed to write audit log for %s: %v\n", action, err)
	}
}

func generateSecureToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
