package event

import (
	"time"
)

// ============================
// 🔷 GORM Event Model
type Event struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Venue       string    `gorm:"type:varchar(255);not null" json:"venue"`
	Category    string    `gorm:"type:varchar(100);not null;index" json:"category"`
	StartTime   time.Time `gorm:"not null;index" json:"startTime"`
	EndTime     time.Time `gorm:"not null" json:"endTime"`
	Capacity    int       `gorm:"not null" json:"capacity"`
	Price       float64   `gorm:"not null;default:0" json:"price"`
	ImageURL    string    `gorm:"type:text" json:"imageUrl"`
	OrganizerID uint      `gorm:"not null;index" json:"organizerId"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Analytics *EventAnalytics `gorm:"foreignKey:EventID" json:"analytics,omitempty"`

	// Total registration rows (confirmed + waitlist), filled on reads
	RegistrationCount int `gorm:"-" json:"registrationCount"`
}

func (Event) TableName() string {
	return "events"
}

// ============================
// 🔷 Per-event analytics counters.
// RegistrationsCount tracks CONFIRMED admissions only and doubles as the
// capacity gate: the admission transaction increments it with a conditional
// UPDATE, so it can never pass Capacity.
type EventAnalytics struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	EventID            uint      `gorm:"uniqueIndex;not null" json:"eventId"`
	RegistrationsCount int       `gorm:"not null;default:0" json:"registrationsCount"`
	Revenue            float64   `gorm:"not null;default:0" json:"revenue"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (EventAnalytics) TableName() string {
	return "event_analytics"
}

// ============================
// 🟡 Create Event Request
type CreateEventRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Venue       string    `json:"venue" binding:"required"`
	Category    string    `json:"category" binding:"required"`
	StartTime   time.Time `json:"startTime" binding:"required"`
	EndTime     time.Time `json:"endTime" binding:"required"`
	Capacity    int       `json:"capacity" binding:"required,min=1"`
	Price       float64   `json:"price" binding:"min=0"`
	ImageURL    string    `json:"imageUrl"`
}

// ============================
// 🟠 Update Event Request
type UpdateEventRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Venue       string    `json:"venue" binding:"required"`
	Category    string    `json:"category" binding:"required"`
	StartTime   time.Time `json:"startTime" binding:"required"`
	EndTime     time.Time `json:"endTime" binding:"required"`
	Capacity    int       `json:"capacity" binding:"required,min=1"`
	Price       float64   `json:"price" binding:"min=0"`
	ImageURL    string    `json:"imageUrl"`
}
