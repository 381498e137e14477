package middleware

import (
	"github.com/adityan21/campus-event-backend/internal/auth"
)

// CanManageEvent reports whether the user may modify or export an event
// owned by organizerID. Admins may manage any event.
func CanManageEvent(user auth.User, organizerID uint) bool {
	return user.Role == auth.RoleAdmin || user.ID == organizerID
}
