package notification

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repository interface {
	CreateInApp(ctx context.Context, n *InAppNotification) error
	ListInAppByUser(ctx context.Context, userID uint, limit int) ([]InAppNotification, error)
	MarkInAppAsRead(ctx context.Context, id uint, userID uint) error
	GetEventRegistrantIDs(ctx context.Context, eventID uint) ([]uint, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateInApp(ctx context.Context, n *InAppNotification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *repository) ListInAppByUser(ctx context.Context, userID uint, limit int) ([]InAppNotification, error) {
	var items []InAppNotification
	if limit <= 0 {
		limit = 50
	}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *repository) MarkInAppAsRead(ctx context.Context, id uint, userID uint) error {
	res := r.db.WithContext(ctx).
		Model(&InAppNotification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.New("notification not found")
	}
	return nil
}

// GetEventRegistrantIDs returns user IDs of everyone registered for an
// event (confirmed and waitlisted). Raw table reference keeps this
// package free of a registration import.
func (r *repository) GetEventRegistrantIDs(ctx context.Context, eventID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Table("registrations").
		Where("event_id = ?", eventID).
		Pluck("user_id", &ids).Error
	return ids, err
}
