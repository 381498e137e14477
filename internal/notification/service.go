package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/adityan21/campus-event-backend/internal/auth"
	"github.com/adityan21/campus-event-backend/utils"
)

type Service interface {
	CreateInApp(ctx context.Context, userID uint, eventID *uint, title, message, category string, payload map[string]interface{}) error
	ListInAppByUser(ctx context.Context, userID uint, limit int) ([]InAppNotification, error)
	MarkInAppAsRead(ctx context.Context, id uint, userID uint) error

	// Fan-out helpers
	CreateInAppForEventRegistrants(ctx context.Context, eventID uint, title, message, category string) error

	// DeliverRegistrationNotice sends the email + in-app notice for one
	// admission outcome. Called by the Kafka consumer, or inline when
	// fanout is disabled.
	DeliverRegistrationNotice(ctx context.Context, msg utils.RegistrationMessage) error
}

type service struct {
	repo     Repository
	authRepo auth.Repository
}

func NewService(repo Repository, authRepo auth.Repository) Service {
	return &service{
		repo:     repo,
		authRepo: authRepo,
	}
}

func (s *service) CreateInApp(ctx context.Context, userID uint, eventID *uint, title, message, category string, payload map[string]interface{}) error {
	n := &InAppNotification{
		UserID:   userID,
		EventID:  eventID,
		Title:    title,
		Message:  message,
		Category: category,
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err == nil {
			n.Payload = datatypes.JSON(raw)
		}
	}
	return s.repo.CreateInApp(ctx, n)
}

func (s *service) ListInAppByUser(ctx context.Context, userID uint, limit int) ([]InAppNotification, error) {
	return s.repo.ListInAppByUser(ctx, userID, limit)
}

func (s *service) MarkInAppAsRead(ctx context.Context, id uint, userID uint) error {
	return s.repo.MarkInAppAsRead(ctx, id, userID)
}

// CreateInAppForEventRegistrants fans an in-app notice out to everyone
// registered for the event. Per-user failures are logged and skipped, one
// bad row shouldn't starve the rest.
func (s *service) CreateInAppForEventRegistrants(ctx context.Context, eventID uint, title, message, category string) error {
	userIDs, err := s.repo.GetEventRegistrantIDs(ctx, eventID)
	if err != nil {
		return err
	}

	for _, userID := range userIDs {
		if err := s.CreateInApp(ctx, userID, &eventID, title, message, category, nil); err != nil {
			fmt.Printf("⚠️ Failed to create in-app notification for user %d: %v\n", userID, err)
		}
	}
	return nil
}

func (s *service) DeliverRegistrationNotice(ctx context.Context, msg utils.RegistrationMessage) error {
	payload := map[string]interface{}{
		"registration_id": msg.RegistrationID,
		"status":          msg.Status,
		"qr_code":         msg.QRCode,
	}

	var title, body string
	var emailErr error
	switch msg.Status {
	case "CONFIRMED":
		title = "Registration Confirmed"
		body = fmt.Sprintf("You're confirmed for %q. Check-in code: %s", msg.EventTitle, msg.QRCode)
		emailErr = utils.SendRegistrationConfirmedEmail(msg.UserEmail, msg.UserName, msg.EventTitle, msg.QRCode)
	case "WAITLIST":
		title = "Added to Waitlist"
		body = fmt.Sprintf("%q is full. You're on the waitlist and will be notified if a spot opens.", msg.EventTitle)
		emailErr = utils.SendRegistrationWaitlistedEmail(msg.UserEmail, msg.UserName, msg.EventTitle)
	case "PROMOTED":
		title = "Registration Confirmed"
		body = fmt.Sprintf("A spot opened up! You're now confirmed for %q. Check-in code: %s", msg.EventTitle, msg.QRCode)
		emailErr = utils.SendWaitlistPromotedEmail(msg.UserEmail, msg.UserName, msg.EventTitle, msg.QRCode)
	default:
		return fmt.Errorf("unknown registration status %q", msg.Status)
	}

	if emailErr != nil {
		fmt.Printf("⚠️ Failed to send registration email to %s: %v\n", msg.UserEmail, emailErr)
	}

	return s.CreateInApp(ctx, msg.UserID, &msg.EventID, title, body, "registration", payload)
}
