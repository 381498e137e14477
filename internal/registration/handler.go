package registration

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/adityan21/campus-event-backend/internal/reports"
	"github.com/adityan21/campus-event-backend/middleware"
)

type Handler struct {
	Service  *Service
	Exporter reports.AttendeeExporter
}

func NewHandler(s *Service) *Handler {
	return &Handler{
		Service:  s,
		Exporter: reports.NewAttendeeExporter(),
	}
}

// ===========================
// 🎯 POST /api/registrations/:eventId
func (h *Handler) Register(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	eventID, err := strconv.Atoi(c.Param("eventId"))
	if err != nil || eventID < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event ID"})
		return
	}

	reg, err := h.Service.Register(c.Request.Context(), user, uint(eventID), clientIP(c))
	if err != nil {
		switch {
		case err == ErrEventNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
		case err == ErrAlreadyRegistered:
			c.JSON(http.StatusConflict, gin.H{"error": "already registered for this event"})
		case err == ErrScheduleConflict:
			c.JSON(http.StatusConflict, gin.H{"error": "schedule conflict with an existing registration"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register"})
		}
		return
	}

	c.JSON(http.StatusCreated, reg)
}

// ===========================
// 📄 GET /api/registrations/mine
func (h *Handler) Mine(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	regs, err := h.Service.ListMine(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list registrations"})
		return
	}

	c.JSON(http.StatusOK, regs)
}

// ===========================
// ❌ DELETE /api/registrations/:id
func (h *Handler) Cancel(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid registration ID"})
		return
	}

	if err := h.Service.Cancel(c.Request.Context(), user, uint(id), clientIP(c)); err != nil {
		if err == ErrRegistrationNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "registration not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel registration"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "registration cancelled"})
}

type validateRequest struct {
	QRCode string `json:"qrCode" binding:"required"`
}

// ===========================
// 🔍 POST /api/registrations/validate
// An unknown code is a normal outcome for the scanner, so it answers
// 200 with valid:false rather than an error status.
func (h *Handler) Validate(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "qrCode is required"})
		return
	}

	reg, err := h.Service.Validate(c.Request.Context(), user, req.QRCode, clientIP(c))
	if err != nil {
		if err == ErrRegistrationNotFound {
			c.JSON(http.StatusOK, gin.H{"valid": false})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to validate code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true, "registration": reg})
}

// ===========================
// 📄 GET /api/registrations/export/:eventId?format=csv|xlsx|pdf
// Accepts a trailing ".csv" on the event ID, some clients build the
// download URL that way.
func (h *Handler) Export(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	rawID := strings.TrimSuffix(c.Param("eventId"), ".csv")
	eventID, err := strconv.Atoi(rawID)
	if err != nil || eventID < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event ID"})
		return
	}

	regs, ev, err := h.Service.Attendees(c.Request.Context(), user, uint(eventID), clientIP(c))
	if err != nil {
		switch {
		case err == ErrEventNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
		case err == ErrNotEventOwner:
			c.JSON(http.StatusForbidden, gin.H{"error": "You can only export attendees of your own events"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export attendees"})
		}
		return
	}

	rows := make([]reports.AttendeeRow, 0, len(regs))
	for _, reg := range regs {
		row := reports.AttendeeRow{
			Status: reg.Status,
			QRCode: reg.QRCode,
		}
		if reg.User != nil {
			row.Name = reg.User.FullName
			row.Email = reg.User.Email
		}
		rows = append(rows, row)
	}

	format := c.DefaultQuery("format", reports.FormatCSV)
	data, filename, contentType, err := h.Exporter.Export(format, ev.ID, rows)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, contentType, data)
}

func clientIP(c *gin.Context) string {
	return middleware.GetIPFromContext(c)
}
