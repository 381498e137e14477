package registration

import (
	"time"

	"github.com/adityan21/campus-event-backend/internal/auth"
	"github.com/adityan21/campus-event-backend/internal/event"
)

// Registration status values
const (
	StatusConfirmed = "CONFIRMED"
	StatusWaitlist  = "WAITLIST"
)

// ============================
// 🔷 GORM Registration Model
// The (user_id, event_id) unique index is the backstop for the duplicate
// check inside the admission transaction.
type Registration struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_registration_user_event" json:"userId"`
	EventID   uint      `gorm:"not null;uniqueIndex:idx_registration_user_event;index" json:"eventId"`
	Status    string    `gorm:"size:20;not null" json:"status"`
	QRCode    string    `gorm:"size:120;not null;uniqueIndex" json:"qrCode"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`

	User  *auth.User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Event *event.Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
}

func (Registration) TableName() string {
	return "registrations"
}
