package event

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/adityan21/campus-event-backend/internal/auditlog"
	"github.com/adityan21/campus-event-backend/internal/auth"
	"github.com/adityan21/campus-event-backend/internal/notification"
	"github.com/adityan21/campus-event-backend/middleware"
)

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrInvalidSchedule = errors.New("event end time must be after start time")
	ErrNotEventOwner   = errors.New("not allowed to manage this event")
)

// Service wraps business logic for campus events
type Service struct {
	Repo     *Repository
	AuditSvc auditlog.Service
	NotifSvc notification.Service
}

func NewService(r *Repository, auditSvc auditlog.Service) *Service {
	return &Service{
		Repo:     r,
		AuditSvc: auditSvc,
	}
}

// ===========================
// 🎯 Create Event
func (s *Service) CreateEvent(ctx context.Context, req *CreateEventRequest, organizer auth.User, ip string) (*Event, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, ErrInvalidSchedule
	}

	event := &Event{
		Title:       req.Title,
		Description: req.Description,
		Venue:       req.Venue,
		Category:    req.Category,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Capacity:    req.Capacity,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		OrganizerID: organizer.ID,
	}

	if err := s.Repo.CreateEvent(event); err != nil {
		s.audit(ctx, &organizer.ID, nil, auditlog.ActionCreateEvent, map[string]interface{}{
			"title": req.Title,
			"error": err.Error(),
		}, ip, "failure")
		return nil, err
	}

	s.audit(ctx, &organizer.ID, &event.ID, auditlog.ActionCreateEvent, map[string]interface{}{
		"event_id": event.ID,
		"title":    event.Title,
		"category": event.Category,
		"capacity": event.Capacity,
	}, ip, "success")

	return event, nil
}

// ===========================
// 🔍 Get Event by ID
func (s *Service) GetEventByID(id uint) (*Event, error) {
	event, err := s.Repo.GetEventByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

// ===========================
// 📄 List Events with search + category filter
func (s *Service) ListEvents(search, category string) ([]Event, error) {
	return s.Repo.ListEvents(search, category)
}

// ===========================
// 🛠 Update Event (owner or admin)
func (s *Service) UpdateEvent(ctx context.Context, id uint, req *UpdateEventRequest, user auth.User, ip string) (*Event, error) {
	event, err := s.GetEventByID(id)
	if err != nil {
		return nil, err
	}

	if !middleware.CanManageEvent(user, event.OrganizerID) {
		s.audit(ctx, &user.ID, &id, auditlog.ActionUpdateEvent, map[string]interface{}{
			"event_id": id,
			"error":    "not owner",
		}, ip, "failure")
		return nil, ErrNotEventOwner
	}

	if !req.EndTime.After(req.StartTime) {
		return nil, ErrInvalidSchedule
	}

	event.Title = req.Title
	event.Description = req.Description
	event.Venue = req.Venue
	event.Category = req.Category
	event.StartTime = req.StartTime
	event.EndTime = req.EndTime
	event.Capacity = req.Capacity
	event.Price = req.Price
	event.ImageURL = req.ImageURL

	if err := s.Repo.UpdateEvent(event); err != nil {
		s.audit(ctx, &user.ID, &id, auditlog.ActionUpdateEvent, map[string]interface{}{
			"event_id": id,
			"error":    err.Error(),
		}, ip, "failure")
		return nil, err
	}

	s.audit(ctx, &user.ID, &id, auditlog.ActionUpdateEvent, map[string]interface{}{
		"event_id": event.ID,
		"title":    event.Title,
	}, ip, "success")

	// Heads-up for everyone already registered
	if s.NotifSvc != nil {
		if err := s.NotifSvc.CreateInAppForEventRegistrants(ctx, event.ID,
			"Event Updated",
			fmt.Sprintf("%q has been updated. Check the new details.", event.Title),
			"event",
		); err != nil {
			fmt.Printf("⚠️ Failed to notify registrants of event %d update: %v\n", event.ID, err)
		}
	}

	return event, nil
}

// ===========================
// ❌ Delete Event (owner or admin, cascades registrations + analytics)
func (s *Service) DeleteEvent(ctx context.Context, id uint, user auth.User, ip string) error {
	event, err := s.GetEventByID(id)
	if err != nil {
		return err
	}

	if !middleware.CanManageEvent(user, event.OrganizerID) {
		s.audit(ctx, &user.ID, &id, auditlog.ActionDeleteEvent, map[string]interface{}{
			"event_id": id,
			"error":    "not owner",
		}, ip, "failure")
		return ErrNotEventOwner
	}

	// Notify registrants before the cascade removes their registrations
	if s.NotifSvc != nil {
		if err := s.NotifSvc.CreateInAppForEventRegistrants(ctx, event.ID,
			"Event Cancelled",
			fmt.Sprintf("%q has been cancelled by the organizer.", event.Title),
			"event",
		); err != nil {
			fmt.Printf("⚠️ Failed to notify registrants of event %d cancellation: %v\n", event.ID, err)
		}
	}

	if err := s.Repo.DeleteEvent(id); err != nil {
		s.audit(ctx, &user.ID, &id, auditlog.ActionDeleteEvent, map[string]interface{}{
			"event_id": id,
			"error":    err.Error(),
		}, ip, "failure")
		return err
	}

	s.audit(ctx, &user.ID, nil, auditlog.ActionDeleteEvent, map[string]interface{}{
		"event_id": id,
		"title":    event.Title,
	}, ip, "success")

	return nil
}

func (s *Service) audit(ctx context.Context, userID *uint, eventID *uint, action string, details map[string]interface{}, ip, status string) {
	if s.AuditSvc == nil {
		return
	}
	if err := s.AuditSvc.LogAction(ctx, userID, eventID, action, details, ip, status); err != nil {
		fmt.Printf("⚠️ Failed to write audit log for %s: %v\n", action, err)
	}
}
