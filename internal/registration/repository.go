package registration

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/adityan21/campus-event-backend/internal/event"
)

var (
	ErrAlreadyRegistered    = errors.New("already registered for this event")
	ErrScheduleConflict     = errors.New("schedule conflict with an existing registration")
	ErrRegistrationNotFound = errors.New("registration not found")
)

type Repository struct {
	DB *gorm.DB
}

// isDuplicateKey spots a unique-constraint violation across drivers:
// translated gorm error, Postgres wording, sqlite wording.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// ===========================
// 🎯 Admit runs the whole admission decision in one transaction:
// duplicate check, schedule-conflict check (inclusive bounds), capacity
// decision and insert. The capacity gate is a conditional increment on
// the event's analytics row — no row locks, so concurrent admissions on
// different app instances serialize on the UPDATE itself. 0 rows
// affected means the event is full and the registration goes to the
// waitlist; revenue only moves for confirmed seats.
func (r *Repository) Admit(ctx context.Context, userID uint, ev *event.Event, qrCode string) (*Registration, error) {
	var reg *Registration

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dup int64
		if err := tx.Model(&Registration{}).
			Where("user_id = ? AND event_id = ?", userID, ev.ID).
			Count(&dup).Error; err != nil {
			return err
		}
		if dup > 0 {
			return ErrAlreadyRegistered
		}

		// Inclusive overlap: [a.start, a.end] and [b.start, b.end]
		// conflict when a.start <= b.end AND a.end >= b.start. Events
		// that merely touch at a boundary count as a conflict.
		var conflicts int64
		if err := tx.Table("registrations").
			Joins("JOIN events ON events.id = registrations.event_id").
			Where("registrations.user_id = ?", userID).
			Where("events.start_time <= ? AND events.end_time >= ?", ev.EndTime, ev.StartTime).
			Count(&conflicts).Error; err != nil {
			return err
		}
		if conflicts > 0 {
			return ErrScheduleConflict
		}

		res := tx.Exec(
			`UPDATE event_analytics
			 SET registrations_count = registrations_count + 1, revenue = revenue + ?
			 WHERE event_id = ? AND registrations_count < ?`,
			ev.Price, ev.ID, ev.Capacity,
		)
		if res.Error != nil {
			return res.Error
		}

		status := StatusWaitlist
		if res.RowsAffected == 1 {
			status = StatusConfirmed
		}

		reg = &Registration{
			UserID:  userID,
			EventID: ev.ID,
			Status:  status,
			QRCode:  qrCode,
		}
		if err := tx.Create(reg).Error; err != nil {
			// Two requests for the same (user,event) can both pass the
			// count above; the unique index catches the loser here
			if isDuplicateKey(err) {
				return ErrAlreadyRegistered
			}
			return err
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return reg, nil
}

// ===========================
// ❌ CancelAndPromote removes a user's registration and, when a
// confirmed seat frees up, promotes the oldest waitlisted registration
// in the same transaction. Returns the cancelled registration and the
// promoted one (nil if nobody was waiting).
func (r *Repository) CancelAndPromote(ctx context.Context, regID, userID uint) (*Registration, *Registration, error) {
	var cancelled Registration
	var promoted *Registration

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Event").
			Where("id = ? AND user_id = ?", regID, userID).
			First(&cancelled).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRegistrationNotFound
			}
			return err
		}

		if err := tx.Delete(&Registration{}, cancelled.ID).Error; err != nil {
			return err
		}

		if cancelled.Status != StatusConfirmed {
			return nil
		}

		price := 0.0
		capacity := 0
		if cancelled.Event != nil {
			price = cancelled.Event.Price
			capacity = cancelled.Event.Capacity
		}

		// Free the seat and refund the counter
		if err := tx.Exec(
			`UPDATE event_analytics
			 SET registrations_count = registrations_count - 1, revenue = revenue - ?
			 WHERE event_id = ?`,
			price, cancelled.EventID,
		).Error; err != nil {
			return err
		}

		var next Registration
		err := tx.Preload("User").
			Where("event_id = ? AND status = ?", cancelled.EventID, StatusWaitlist).
			Order("created_at ASC, id ASC").
			First(&next).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil // nobody waiting
			}
			return err
		}

		// Claim the freed seat through the same conditional gate used by
		// Admit, so a concurrent admission can't double-fill it
		res := tx.Exec(
			`UPDATE event_analytics
			 SET registrations_count = registrations_count + 1, revenue = revenue + ?
			 WHERE event_id = ? AND registrations_count < ?`,
			price, cancelled.EventID, capacity,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil // seat was taken in the meantime, stay waitlisted
		}

		if err := tx.Model(&Registration{}).
			Where("id = ?", next.ID).
			Update("status", StatusConfirmed).Error; err != nil {
			return err
		}
		next.Status = StatusConfirmed
		promoted = &next
		return nil
	})

	if err != nil {
		return nil, nil, err
	}
	return &cancelled, promoted, nil
}

// ===========================
// 🔍 FindByQRCode resolves a check-in code to its registration with the
// attendee and event attached. Read-only, validation never mutates.
func (r *Repository) FindByQRCode(ctx context.Context, code string) (*Registration, error) {
	var reg Registration
	err := r.DB.WithContext(ctx).
		Preload("User").
		Preload("Event").
		Where("qr_code = ?", code).
		First(&reg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	return &reg, nil
}

// ===========================
// 📄 ListByUser returns a user's registrations with event details,
// newest first
func (r *Repository) ListByUser(ctx context.Context, userID uint) ([]Registration, error) {
	var regs []Registration
	err := r.DB.WithContext(ctx).
		Preload("Event").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&regs).Error
	return regs, err
}

// ===========================
// 📄 ListByEvent returns an event's registrations with attendees,
// confirmed first, oldest first within a status (export order)
func (r *Repository) ListByEvent(ctx context.Context, eventID uint) ([]Registration, error) {
	var regs []Registration
	err := r.DB.WithContext(ctx).
		Preload("User").
		Where("event_id = ?", eventID).
		Order("status ASC, created_at ASC").
		Find(&regs).Error
	return regs, err
}

// ===========================
// 🔢 CountByUser for the admin overview
func (r *Repository) CountRegistrations(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&Registration{}).Count(&count).Error
	return count, err
}
