package analytics

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/adityan21/campus-event-backend/internal/auth"
	"github.com/adityan21/campus-event-backend/internal/event"
	"github.com/adityan21/campus-event-backend/internal/registration"
	"github.com/adityan21/campus-event-backend/middleware"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrNotEventOwner = errors.New("not allowed to view this event's analytics")
)

// EventAnalyticsResponse is the per-event counter view. Confirmed is
// the maintained counter on event_analytics; the waitlist size is
// derived from the total registration count.
type EventAnalyticsResponse struct {
	EventID        uint    `json:"eventId"`
	Title          string  `json:"title"`
	Capacity       int     `json:"capacity"`
	ConfirmedCount int     `json:"confirmedCount"`
	WaitlistCount  int     `json:"waitlistCount"`
	Revenue        float64 `json:"revenue"`
}

// OverviewResponse is the admin-wide summary
type OverviewResponse struct {
	TotalEvents        int64 `json:"totalEvents"`
	TotalUsers         int64 `json:"totalUsers"`
	TotalRegistrations int64 `json:"totalRegistrations"`
}

type Service struct {
	EventRepo *event.Repository
	RegRepo   *registration.Repository
	AuthRepo  auth.Repository
}

func NewService(eventRepo *event.Repository, regRepo *registration.Repository, authRepo auth.Repository) *Service {
	return &Service{
		EventRepo: eventRepo,
		RegRepo:   regRepo,
		AuthRepo:  authRepo,
	}
}

// ===========================
// 📊 GetEventAnalytics returns the counters for one event, owner or
// admin only
func (s *Service) GetEventAnalytics(ctx context.Context, requester auth.User, eventID uint) (*EventAnalyticsResponse, error) {
	ev, err := s.EventRepo.GetEventByID(eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	if !middleware.CanManageEvent(requester, ev.OrganizerID) {
		return nil, ErrNotEventOwner
	}

	resp := &EventAnalyticsResponse{
		EventID:  ev.ID,
		Title:    ev.Title,
		Capacity: ev.Capacity,
	}
	if ev.Analytics != nil {
		resp.ConfirmedCount = ev.Analytics.RegistrationsCount
		resp.Revenue = ev.Analytics.Revenue
	}
	if waitlist := ev.RegistrationCount - resp.ConfirmedCount; waitlist > 0 {
		resp.WaitlistCount = waitlist
	}
	return resp, nil
}

// ===========================
// 📊 GetOverview returns platform-wide totals for the admin dashboard
func (s *Service) GetOverview(ctx context.Context) (*OverviewResponse, error) {
	events, err := s.EventRepo.CountEvents()
	if err != nil {
		return nil, err
	}

	users, err := s.AuthRepo.CountUsers()
	if err != nil {
		return nil, err
	}

	regs, err := s.RegRepo.CountRegistrations(ctx)
	if err != nil {
		return nil, err
	}

	return &OverviewResponse{
		TotalEvents:        events,
		TotalUsers:         users,
		TotalRegistrations: regs,
	}, nil
}
