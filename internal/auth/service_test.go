package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/adityan21/campus-event-backend/config"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTAccessSecret:    "test-access-secret",
		JWTRefreshSecret:   "test-refresh-secret",
		JWTAccessTTLHours:  1,
		JWTRefreshTTLHours: 2,
	}
}

func newTestService(db *gorm.DB) Service {
	return NewService(NewRepository(db), nil, testConfig())
}

func TestRegisterAndLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	tokens, user, err := svc.Register(ctx, RegisterInput{
		FullName: "Priya Sharma",
		Email:    "priya@campus.edu",
		Password: "s3cret-pass",
	}, "127.0.0.1")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Error("expected both tokens to be issued")
	}
	if user.Role != RoleStudent {
		t.Errorf("default role = %s, want STUDENT", user.Role)
	}
	if user.PasswordHash == "s3cret-pass" || !strings.HasPrefix(user.PasswordHash, "$2") {
		t.Error("password was not bcrypt-hashed")
	}

	// Correct credentials
	_, logged, err := svc.Login(ctx, LoginInput{Email: "priya@campus.edu", Password: "s3cret-pass"}, "127.0.0.1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if logged.ID != user.ID {
		t.Errorf("login resolved user %d, want %d", logged.ID, user.ID)
	}

	// Wrong password
	if _, _, err := svc.Login(ctx, LoginInput{Email: "priya@campus.edu", Password: "nope"}, "127.0.0.1"); err != ErrInvalidCredentials {
		t.Errorf("wrong password: got %v, want ErrInvalidCredentials", err)
	}

	// Unknown email
	if _, _, err := svc.Login(ctx, LoginInput{Email: "ghost@campus.edu", Password: "s3cret-pass"}, "127.0.0.1"); err != ErrInvalidCredentials {
		t.Errorf("unknown email: got %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	in := RegisterInput{FullName: "A", Email: "taken@campus.edu", Password: "pw123456"}
	if _, _, err := svc.Register(ctx, in, "127.0.0.1"); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, _, err := svc.Register(ctx, in, "127.0.0.1"); err != ErrEmailTaken {
		t.Errorf("got %v, want ErrEmailTaken", err)
	}
}

func TestRegisterInvalidRole(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)

	_, _, err := svc.Register(context.Background(), RegisterInput{
		FullName: "B",
		Email:    "weird@campus.edu",
		Password: "pw123456",
		Role:     "WIZARD",
	}, "127.0.0.1")
	if err == nil {
		t.Error("expected error for invalid role")
	}
}

func TestRefreshIssuesNewAccessToken(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	tokens, user, err := svc.Register(ctx, RegisterInput{
		FullName: "Ravi",
		Email:    "ravi@campus.edu",
		Password: "pw123456",
		Role:     RoleOrganizer,
	}, "127.0.0.1")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	access, err := svc.Refresh(tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	parsed, err := jwt.Parse(access, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-access-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("refreshed access token does not verify: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if uint(claims["user_id"].(float64)) != user.ID {
		t.Errorf("user_id claim = %v, want %d", claims["user_id"], user.ID)
	}
	if claims["role"] != RoleOrganizer {
		t.Errorf("role claim = %v, want ORGANIZER", claims["role"])
	}

	// An access token is not accepted as a refresh token
	if _, err := svc.Refresh(tokens.AccessToken); err == nil {
		t.Error("expected refresh with access token to fail")
	}
}

func TestFindByEmailIsCaseInsensitive(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, RegisterInput{
		FullName: "Case",
		Email:    "Mixed.Case@Campus.edu",
		Password: "pw123456",
	}, "127.0.0.1"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, _, err := svc.Login(ctx, LoginInput{Email: "mixed.case@campus.edu", Password: "pw123456"}, "127.0.0.1"); err != nil {
		t.Errorf("lowercase login failed: %v", err)
	}
}
