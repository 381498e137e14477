package analytics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/adityan21/campus-event-backend/internal/auth"
	"github.com/adityan21/campus-event-backend/internal/event"
	"github.com/adityan21/campus-event-backend/internal/registration"
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

	if err := db.AutoMigrate(
		&auth.User{},
		&event.Event{},
		&event.EventAnalytics{},
		&registration.Registration{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestGetEventAnalytics(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	eventRepo := event.NewRepository(db)
	regRepo := registration.NewRepository(db)
	authRepo := auth.NewRepository(db)
	svc := NewService(eventRepo, regRepo, authRepo)
	regSvc := registration.NewService(regRepo, eventRepo, nil)

	organizer := auth.User{FullName: "Org", Email: "org@campus.edu", PasswordHash: "x", Role: auth.RoleOrganizer}
	if err := db.Create(&organizer).Error; err != nil {
		t.Fatalf("failed to create organizer: %v", err)
	}

	start := time.Date(2026, 9, 20, 9, 0, 0, 0, time.UTC)
	ev := &event.Event{
		Title:       "Career Fair",
		Venue:       "Main Hall",
		Category:    "career",
		StartTime:   start,
		EndTime:     start.Add(4 * time.Hour),
		Capacity:    2,
		Price:       15,
		OrganizerID: organizer.ID,
	}
	if err := eventRepo.CreateEvent(ev); err != nil {
		t.Fatalf("failed to create event: %v", err)
	}

	// 2 confirmed, 1 waitlisted
	for i := 0; i < 3; i++ {
		u := auth.User{FullName: "S", Email: fmt.Sprintf("s%d@campus.edu", i), PasswordHash: "x", Role: auth.RoleStudent}
		if err := db.Create(&u).Error; err != nil {
			t.Fatalf("failed to create user: %v", err)
		}
		if _, err := regSvc.Register(ctx, u, ev.ID, "127.0.0.1"); err != nil {
			t.Fatalf("register %d failed: %v", i, err)
		}
	}

	resp, err := svc.GetEventAnalytics(ctx, organizer, ev.ID)
	if err != nil {
		t.Fatalf("analytics failed: %v", err)
	}
	if resp.ConfirmedCount != 2 {
		t.Errorf("confirmed = %d, want 2", resp.ConfirmedCount)
	}
	if resp.WaitlistCount != 1 {
		t.Errorf("waitlist = %d, want 1", resp.WaitlistCount)
	}
	if resp.Revenue != 30 {
		t.Errorf("revenue = %.2f, want 30.00", resp.Revenue)
	}

	// Only the owner or an admin may look
	stranger := auth.User{ID: 4242, Role: auth.RoleOrganizer}
	if _, err := svc.GetEventAnalytics(ctx, stranger, ev.ID); err != ErrNotEventOwner {
		t.Errorf("stranger: got %v, want ErrNotEventOwner", err)
	}
	admin := auth.User{ID: 4243, Role: auth.RoleAdmin}
	if _, err := svc.GetEventAnalytics(ctx, admin, ev.ID); err != nil {
		t.Errorf("admin should be allowed: %v", err)
	}

	if _, err := svc.GetEventAnalytics(ctx, organizer, 9999); err != ErrEventNotFound {
		t.Errorf("missing event: got %v, want ErrEventNotFound", err)
	}
}

func TestGetOverview(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	eventRepo := event.NewRepository(db)
	regRepo := registration.NewRepository(db)
	authRepo := auth.NewRepository(db)
	svc := NewService(eventRepo, regRepo, authRepo)

	for i := 0; i < 2; i++ {
		u := auth.User{FullName: "U", Email: fmt.Sprintf("u%d@campus.edu", i), PasswordHash: "x", Role: auth.RoleStudent}
		if err := db.Create(&u).Error; err != nil {
			t.Fatalf("failed to create user: %v", err)
		}
	}
	start := time.Date(2026, 9, 20, 9, 0, 0, 0, time.UTC)
	ev := &event.Event{Title: "T", Venue: "V", Category: "c", StartTime: start, EndTime: start.Add(time.Hour), Capacity: 10, OrganizerID: 1}
	if err := eventRepo.CreateEvent(ev); err != nil {
		t.Fatalf("failed to create event: %v", err)
	}
	if err := db.Create(&registration.Registration{UserID: 1, EventID: ev.ID, Status: registration.StatusConfirmed, QRCode: "QR-1-x"}).Error; err != nil {
		t.Fatalf("failed to seed registration: %v", err)
	}

	resp, err := svc.GetOverview(ctx)
	if err != nil {
		t.Fatalf("overview failed: %v", err)
	}
	if resp.TotalUsers != 2 || resp.TotalEvents != 1 || resp.TotalRegistrations != 1 {
		t.Errorf("overview = %+v, want 2 users, 1 event, 1 registration", resp)
	}
}
