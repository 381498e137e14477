package registration

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adityan21/campus-event-backend/internal/auditlog"
	"github.com/adityan21/campus-event-backend/internal/auth"
	"github.com/adityan21/campus-event-backend/internal/event"
	"github.com/adityan21/campus-event-backend/internal/notification"
	"github.com/adityan21/campus-event-backend/middleware"
	"github.com/adityan21/campus-event-backend/utils"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrNotEventOwner = errors.New("not allowed to manage this event")
)

// Service wraps the admission controller and check-in validation
type Service struct {
	Repo      *Repository
	EventRepo *event.Repository
	AuditSvc  auditlog.Service
	NotifSvc  notification.Service
}

func NewService(r *Repository, eventRepo *event.Repository, auditSvc auditlog.Service) *Service {
	return &Service{
		Repo:      r,
		EventRepo: eventRepo,
		AuditSvc:  auditSvc,
	}
}

// ===========================
// 🎯 Register admits a user to an event: CONFIRMED while seats remain,
// WAITLIST once full. The decision itself happens inside the repository
// transaction; notifications and audit entries are post-commit and
// best-effort.
func (s *Service) Register(ctx context.Context, user auth.User, eventID uint, ip string) (*Registration, error) {
	ev, err := s.EventRepo.GetEventByID(eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	qrCode := fmt.Sprintf("QR-%d-%s", ev.ID, uuid.NewString())

	reg, err := s.Repo.Admit(ctx, user.ID, ev, qrCode)
	if err != nil {
		if errors.Is(err, ErrAlreadyRegistered) || errors.Is(err, ErrScheduleConflict) {
			s.audit(ctx, &user.ID, &eventID, auditlog.ActionRegisterForEvent, map[string]interface{}{
				"event_id": eventID,
				"error":    err.Error(),
			}, ip, "failure")
		}
		return nil, err
	}

	s.audit(ctx, &user.ID, &eventID, auditlog.ActionRegisterForEvent, map[string]interface{}{
		"registration_id": reg.ID,
		"event_id":        eventID,
		"status":          reg.Status,
	}, ip, "success")

	s.fanout(ctx, utils.RegistrationMessage{
		RegistrationID: reg.ID,
		UserID:         user.ID,
		UserName:       user.FullName,
		UserEmail:      user.Email,
		EventID:        ev.ID,
		EventTitle:     ev.Title,
		Status:         reg.Status,
		QRCode:         reg.QRCode,
	})

	reg.Event = ev
	return reg, nil
}

// fanout hands the admission outcome to the notification pipeline.
// Kafka when configured, inline delivery otherwise. Either way a
// failure is logged, never returned — the registration already stands.
func (s *Service) fanout(ctx context.Context, msg utils.RegistrationMessage) {
	if utils.KafkaEnabled() {
		if err := utils.PublishRegistration(ctx, msg); err == nil {
			return
		} else {
			fmt.Printf("⚠️ Kafka publish failed, delivering inline: %v\n", err)
		}
	}
	if s.NotifSvc != nil {
		if err := s.NotifSvc.DeliverRegistrationNotice(ctx, msg); err != nil {
			fmt.Printf("⚠️ Failed to deliver registration notice: %v\n", err)
		}
	}
}

// ===========================
// ❌ Cancel removes the caller's registration. Freeing a confirmed seat
// promotes the oldest waitlisted attendee, who gets notified.
func (s *Service) Cancel(ctx context.Context, user auth.User, regID uint, ip string) error {
	cancelled, promoted, err := s.Repo.CancelAndPromote(ctx, regID, user.ID)
	if err != nil {
		return err
	}

	s.audit(ctx, &user.ID, &cancelled.EventID, auditlog.ActionCancelRegistration, map[string]interface{}{
		"registration_id": cancelled.ID,
		"event_id":        cancelled.EventID,
		"status":          cancelled.Status,
	}, ip, "success")

	if promoted != nil && promoted.User != nil {
		eventTitle := ""
		if cancelled.Event != nil {
			eventTitle = cancelled.Event.Title
		}
		s.fanout(ctx, utils.RegistrationMessage{
			RegistrationID: promoted.ID,
			UserID:         promoted.UserID,
			UserName:       promoted.User.FullName,
			UserEmail:      promoted.User.Email,
			EventID:        promoted.EventID,
			EventTitle:     eventTitle,
			Status:         "PROMOTED",
			QRCode:         promoted.QRCode,
		})
	}

	return nil
}

// ===========================
// 📄 ListMine returns the caller's registrations with event details
func (s *Service) ListMine(ctx context.Context, userID uint) ([]Registration, error) {
	return s.Repo.ListByUser(ctx, userID)
}

// ===========================
// 🔍 Validate resolves a check-in code. A miss is not an error to the
// caller, the scanner UI just shows "invalid". Validation never flips
// any state, scanning the same code twice gives the same answer.
func (s *Service) Validate(ctx context.Context, validator auth.User, code, ip string) (*Registration, error) {
	reg, err := s.Repo.FindByQRCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrRegistrationNotFound) {
			s.audit(ctx, &validator.ID, nil, auditlog.ActionValidateCheckIn, map[string]interface{}{
				"qr_code": code,
				"valid":   false,
			}, ip, "failure")
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}

	s.audit(ctx, &validator.ID, &reg.EventID, auditlog.ActionValidateCheckIn, map[string]interface{}{
		"registration_id": reg.ID,
		"valid":           true,
	}, ip, "success")

	return reg, nil
}

// ===========================
// 📄 Attendees returns an event's registrations for export, after an
// owner-or-admin check.
func (s *Service) Attendees(ctx context.Context, requester auth.User, eventID uint, ip string) ([]Registration, *event.Event, error) {
	ev, err := s.EventRepo.GetEventByID(eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrEventNotFound
		}
		return nil, nil, err
	}

	if !middleware.CanManageEvent(requester, ev.OrganizerID) {
		return nil, nil, ErrNotEventOwner
	}

	regs, err := s.Repo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}

	s.audit(ctx, &requester.ID, &eventID, auditlog.ActionExportAttendees, map[string]interface{}{
		"event_id": eventID,
		"count":    len(regs),
	}, ip, "success")

	return regs, ev, nil
}

func (s *Service) audit(ctx context.Context, userID *uint, eventID *uint, action string, details map[string]interface{}, ip, status string) {
	if s.AuditSvc == nil {
		return
	}
	if err := s.AuditSvc.LogAction(ctx, userID, eventID, action, details, ip, status); err != nil {
		fmt.Printf("⚠️ Failed to write audit log for %s: %v\n", action, err)
	}
}
