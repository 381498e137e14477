package notification

import (
	"time"

	"gorm.io/datatypes"
)

// InAppNotification - per-user, in-app bell notifications
type InAppNotification struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	EventID   *uint          `gorm:"index" json:"event_id,omitempty"`
	Title     string         `gorm:"size:150;not null" json:"title"`
	Message   string         `gorm:"type:text;not null" json:"message"`
	Category  string         `gorm:"size:30;not null" json:"category"` // registration, event, system
	Payload   datatypes.JSON `gorm:"type:jsonb" json:"payload,omitempty"`
	IsRead    bool           `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (InAppNotification) TableName() string {
	return "in_app_notifications"
}
