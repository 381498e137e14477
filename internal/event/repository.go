package event

import (
	"strings"

	"gorm.io/gorm"
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// ===========================
// 🎯 Create Event with its analytics row in one transaction
func (r *Repository) CreateEvent(e *Event) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(e).Error; err != nil {
			return err
		}
		return tx.Create(&EventAnalytics{EventID: e.ID}).Error
	})
}

// ===========================
// 🔍 Get Event By ID with analytics and registration count
func (r *Repository) GetEventByID(id uint) (*Event, error) {
	var e Event
	err := r.DB.Preload("Analytics").First(&e, id).Error
	if err != nil {
		return nil, err
	}

	var count int64
	if err := r.DB.Table("registrations").
		Where("event_id = ?", id).
		Count(&count).Error; err != nil {
		return nil, err
	}
	e.RegistrationCount = int(count)

	return &e, nil
}

// ===========================
// 📄 List Events with search + category filter, ordered by start time.
// LOWER(...) LIKE instead of ILIKE so the query also runs on sqlite.
func (r *Repository) ListEvents(search, category string) ([]Event, error) {
	var events []Event

	query := r.DB.Preload("Analytics")

	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(venue) LIKE ?",
			like, like, like,
		)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}

	err := query.Order("start_time ASC").Find(&events).Error
	if err != nil {
		return nil, err
	}

	for i := range events {
		var count int64
		r.DB.Table("registrations").
			Where("event_id = ?", events[i].ID).
			Count(&count)
		events[i].RegistrationCount = int(count)
	}

	return events, nil
}

// ===========================
// 🛠 Update Event
func (r *Repository) UpdateEvent(e *Event) error {
	return r.DB.Save(e).Error
}

// ===========================
// ❌ Delete Event, cascading registrations and analytics in one
// transaction so a failure leaves everything in place
func (r *Repository) DeleteEvent(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM registrations WHERE event_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", id).Delete(&EventAnalytics{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Event{}, id).Error
	})
}

// ===========================
// 🔢 Count all events (admin overview)
func (r *Repository) CountEvents() (int64, error) {
	var count int64
	err := r.DB.Model(&Event{}).Count(&count).Error
	return count, err
}
