package registration

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/adityan21/campus-event-backend/internal/auth"
	"github.com/adityan21/campus-event-backend/internal/event"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	// A single connection keeps the in-memory database alive and
	// serializes concurrent transactions the way the tests expect
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&auth.User{},
		&event.Event{},
		&event.EventAnalytics{},
		&Registration{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) auth.User {
	t.Helper()
	u := auth.User{
		FullName:     "Test User",
		Email:        email,
		PasswordHash: "x",
		Role:         auth.RoleStudent,
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return u
}

func createTestEvent(t *testing.T, db *gorm.DB, capacity int, price float64, start, end time.Time) *event.Event {
	t.Helper()
	ev := &event.Event{
		Title:       "Tech Talk",
		Venue:       "Auditorium",
		Category:    "tech",
		StartTime:   start,
		EndTime:     end,
		Capacity:    capacity,
		Price:       price,
		OrganizerID: 999,
	}
	repo := event.NewRepository(db)
	if err := repo.CreateEvent(ev); err != nil {
		t.Fatalf("failed to create event: %v", err)
	}
	return ev
}

func newTestService(db *gorm.DB) *Service {
	return NewService(NewRepository(db), event.NewRepository(db), nil)
}

func analyticsRow(t *testing.T, db *gorm.DB, eventID uint) event.EventAnalytics {
	t.Helper()
	var row event.EventAnalytics
	if err := db.Where("event_id = ?", eventID).First(&row).Error; err != nil {
		t.Fatalf("failed to load analytics row: %v", err)
	}
	return row
}

func TestRegisterConfirmsUntilCapacity(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	start := time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC)
	ev := createTestEvent(t, db, 2, 50, start, start.Add(2*time.Hour))

	statuses := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		user := createTestUser(t, db, fmt.Sprintf("student%d@campus.edu", i))
		reg, err := svc.Register(ctx, user, ev.ID, "127.0.0.1")
		if err != nil {
			t.Fatalf("register %d failed: %v", i, err)
		}
		statuses = append(statuses, reg.Status)
	}

	want := []string{StatusConfirmed, StatusConfirmed, StatusWaitlist}
	for i, s := range statuses {
		if s != want[i] {
			t.Errorf("registration %d: got status %s, want %s", i, s, want[i])
		}
	}

	row := analyticsRow(t, db, ev.ID)
	if row.RegistrationsCount != 2 {
		t.Errorf("registrations_count = %d, want 2", row.RegistrationsCount)
	}
	if row.Revenue != 100 {
		t.Errorf("revenue = %.2f, want 100.00 (waitlist must not add revenue)", row.Revenue)
	}
}

func TestRegisterConcurrentNeverOversells(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	const capacity = 5
	const attendees = 20

	start := time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC)
	ev := createTestEvent(t, db, capacity, 10, start, start.Add(time.Hour))

	users := make([]auth.User, attendees)
	for i := range users {
		users[i] = createTestUser(t, db, fmt.Sprintf("rush%d@campus.edu", i))
	}

	var wg sync.WaitGroup
	errs := make([]error, attendees)
	for i := range users {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(ctx, users[i], ev.ID, "127.0.0.1")
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("register %d failed: %v", i, err)
		}
	}

	var confirmed, waitlisted int64
	db.Model(&Registration{}).Where("event_id = ? AND status = ?", ev.ID, StatusConfirmed).Count(&confirmed)
	db.Model(&Registration{}).Where("event_id = ? AND status = ?", ev.ID, StatusWaitlist).Count(&waitlisted)

	if confirmed != capacity {
		t.Errorf("confirmed = %d, want exactly %d", confirmed, capacity)
	}
	if waitlisted != attendees-capacity {
		t.Errorf("waitlisted = %d, want %d", waitlisted, attendees-capacity)
	}

	row := analyticsRow(t, db, ev.ID)
	if int64(row.RegistrationsCount) != confirmed {
		t.Errorf("analytics count %d does not match confirmed rows %d", row.RegistrationsCount, confirmed)
	}
}

func TestRegisterRejectsDuplicate(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	start := time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC)
	ev := createTestEvent(t, db, 10, 0, start, start.Add(time.Hour))
	user := createTestUser(t, db, "dup@campus.edu")

	if _, err := svc.Register(ctx, user, ev.ID, "127.0.0.1"); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(ctx, user, ev.ID, "127.0.0.1"); err != ErrAlreadyRegistered {
		t.Errorf("second register: got %v, want ErrAlreadyRegistered", err)
	}
}

func TestDuplicateKeyBackstopMapsToAlreadyRegistered(t *testing.T) {
	db := setupTestDB(t)

	first := Registration{UserID: 1, EventID: 1, Status: StatusConfirmed, QRCode: "QR-1-a"}
	if err := db.Create(&first).Error; err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	// Same (user,event) hits the unique index; the error must read as a
	// duplicate so a racing admission surfaces as 409, not 500
	second := Registration{UserID: 1, EventID: 1, Status: StatusWaitlist, QRCode: "QR-1-b"}
	err := db.Create(&second).Error
	if err == nil {
		t.Fatal("expected unique index to reject duplicate (user,event)")
	}
	if !isDuplicateKey(err) {
		t.Errorf("constraint violation not recognized as duplicate: %v", err)
	}
}

func TestRegisterRejectsScheduleConflict(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "busy@campus.edu")

	start := time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC)
	first := createTestEvent(t, db, 10, 0, start, start.Add(2*time.Hour))
	if _, err := svc.Register(ctx, user, first.ID, "127.0.0.1"); err != nil {
		t.Fatalf("register for first event failed: %v", err)
	}

	cases := []struct {
		name       string
		start, end time.Time
		wantErr    error
	}{
		{"overlapping", start.Add(time.Hour), start.Add(3 * time.Hour), ErrScheduleConflict},
		{"contained", start.Add(30 * time.Minute), start.Add(time.Hour), ErrScheduleConflict},
		{"touching start at other's end", start.Add(2 * time.Hour), start.Add(4 * time.Hour), ErrScheduleConflict},
		{"touching end at other's start", start.Add(-2 * time.Hour), start, ErrScheduleConflict},
		{"disjoint after", start.Add(3 * time.Hour), start.Add(4 * time.Hour), nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev := createTestEvent(t, db, 10, 0, tc.start, tc.end)
			_, err := svc.Register(ctx, user, ev.ID, "127.0.0.1")
			if err != tc.wantErr {
				t.Errorf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestRegisterUnknownEvent(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)

	user := createTestUser(t, db, "ghost@campus.edu")
	if _, err := svc.Register(context.Background(), user, 4242, "127.0.0.1"); err != ErrEventNotFound {
		t.Errorf("got %v, want ErrEventNotFound", err)
	}
}

func TestCancelPromotesOldestWaitlisted(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	start := time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC)
	ev := createTestEvent(t, db, 1, 25, start, start.Add(time.Hour))

	holder := createTestUser(t, db, "holder@campus.edu")
	waiting1 := createTestUser(t, db, "waiting1@campus.edu")
	waiting2 := createTestUser(t, db, "waiting2@campus.edu")

	held, err := svc.Register(ctx, holder, ev.ID, "127.0.0.1")
	if err != nil || held.Status != StatusConfirmed {
		t.Fatalf("holder register: status=%v err=%v", held, err)
	}
	for _, u := range []auth.User{waiting1, waiting2} {
		reg, err := svc.Register(ctx, u, ev.ID, "127.0.0.1")
		if err != nil || reg.Status != StatusWaitlist {
			t.Fatalf("waitlist register: status=%v err=%v", reg, err)
		}
	}

	if err := svc.Cancel(ctx, holder, held.ID, "127.0.0.1"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	var promoted Registration
	if err := db.Where("user_id = ? AND event_id = ?", waiting1.ID, ev.ID).First(&promoted).Error; err != nil {
		t.Fatalf("failed to load first waitlisted reg: %v", err)
	}
	if promoted.Status != StatusConfirmed {
		t.Errorf("oldest waitlisted status = %s, want CONFIRMED", promoted.Status)
	}

	var stillWaiting Registration
	if err := db.Where("user_id = ? AND event_id = ?", waiting2.ID, ev.ID).First(&stillWaiting).Error; err != nil {
		t.Fatalf("failed to load second waitlisted reg: %v", err)
	}
	if stillWaiting.Status != StatusWaitlist {
		t.Errorf("second waitlisted status = %s, want WAITLIST", stillWaiting.Status)
	}

	// The freed seat went to the promotion, so the counter is unchanged
	row := analyticsRow(t, db, ev.ID)
	if row.RegistrationsCount != 1 {
		t.Errorf("registrations_count = %d, want 1", row.RegistrationsCount)
	}
	if row.Revenue != 25 {
		t.Errorf("revenue = %.2f, want 25.00", row.Revenue)
	}
}

func TestCancelWaitlistedLeavesCountersAlone(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	start := time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC)
	ev := createTestEvent(t, db, 1, 30, start, start.Add(time.Hour))

	holder := createTestUser(t, db, "seated@campus.edu")
	waiter := createTestUser(t, db, "leaving@campus.edu")

	if _, err := svc.Register(ctx, holder, ev.ID, "127.0.0.1"); err != nil {
		t.Fatalf("holder register failed: %v", err)
	}
	waitReg, err := svc.Register(ctx, waiter, ev.ID, "127.0.0.1")
	if err != nil {
		t.Fatalf("waiter register failed: %v", err)
	}

	if err := svc.Cancel(ctx, waiter, waitReg.ID, "127.0.0.1"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	row := analyticsRow(t, db, ev.ID)
	if row.RegistrationsCount != 1 {
		t.Errorf("registrations_count = %d, want 1", row.RegistrationsCount)
	}
	if row.Revenue != 30 {
		t.Errorf("revenue = %.2f, want 30.00", row.Revenue)
	}
}

func TestCancelSomeoneElsesRegistration(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	start := time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC)
	ev := createTestEvent(t, db, 5, 0, start, start.Add(time.Hour))

	owner := createTestUser(t, db, "owner@campus.edu")
	other := createTestUser(t, db, "other@campus.edu")

	reg, err := svc.Register(ctx, owner, ev.ID, "127.0.0.1")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := svc.Cancel(ctx, other, reg.ID, "127.0.0.1"); err != ErrRegistrationNotFound {
		t.Errorf("got %v, want ErrRegistrationNotFound", err)
	}
}

func TestValidateRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	start := time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC)
	ev := createTestEvent(t, db, 5, 0, start, start.Add(time.Hour))

	attendee := createTestUser(t, db, "attendee@campus.edu")
	organizer := createTestUser(t, db, "scanner@campus.edu")

	reg, err := svc.Register(ctx, attendee, ev.ID, "127.0.0.1")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	found, err := svc.Validate(ctx, organizer, reg.QRCode, "127.0.0.1")
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if found.ID != reg.ID || found.User == nil || found.User.Email != attendee.Email {
		t.Errorf("validate resolved wrong registration: %+v", found)
	}

	// Validation is read-only, a second scan gives the same answer
	again, err := svc.Validate(ctx, organizer, reg.QRCode, "127.0.0.1")
	if err != nil || again.ID != reg.ID {
		t.Errorf("second validate: got %v, %v", again, err)
	}

	if _, err := svc.Validate(ctx, organizer, "QR-0-bogus", "127.0.0.1"); err != ErrRegistrationNotFound {
		t.Errorf("unknown code: got %v, want ErrRegistrationNotFound", err)
	}
}

func TestListMineNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "lister@campus.edu")

	base := time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		ev := createTestEvent(t, db, 5, 0, base.AddDate(0, 0, i), base.AddDate(0, 0, i).Add(time.Hour))
		if _, err := svc.Register(ctx, user, ev.ID, "127.0.0.1"); err != nil {
			t.Fatalf("register %d failed: %v", i, err)
		}
	}

	regs, err := svc.ListMine(ctx, user.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(regs) != 3 {
		t.Fatalf("got %d registrations, want 3", len(regs))
	}
	for _, reg := range regs {
		if reg.Event == nil {
			t.Errorf("registration %d missing event details", reg.ID)
		}
	}
}
