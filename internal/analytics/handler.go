package analytics

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/adityan21/campus-event-backend/middleware"
)

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

// GET /api/analytics/events/:eventId
func (h *Handler) GetEventAnalytics(c *gin.Context) {
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

	resp, err := h.Service.GetEventAnalytics(c.Request.Context(), user, uint(eventID))
	if err != nil {
		switch {
		case err == ErrEventNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
		case err == ErrNotEventOwner:
			c.JSON(http.StatusForbidden, gin.H{"error": "You can only view analytics of your own events"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load analytics"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GET /api/analytics/overview (admin only, enforced in routes)
func (h *Handler) GetOverview(c *gin.Context) {
	resp, err := h.Service.GetOverview(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load overview"})
		return
	}

	c.JSON(http.StatusOK, resp)
}
