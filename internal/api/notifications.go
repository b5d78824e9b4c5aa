package api

import (
	"net/http"

	"github.com/npezzotti/smartshop/internal/database"
	"github.com/npezzotti/smartshop/internal/types"
)

const (
	adminNotificationLimit = 50
	userNotificationLimit  = 20
)

func (s *App) listNotifications(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFrom(r.Context())

	filter := database.NotificationFilter{
		UserId: session.UserId,
		Limit:  userNotificationLimit,
	}
	if session.IsAdmin() {
		filter = database.NotificationFilter{All: true, Limit: adminNotificationLimit}
	}

	dbNotifications, err := s.db.ListNotifications(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, NewInternalServerError(err))
		return
	}

	notifications := make([]types.Notification, 0, len(dbNotifications))
	for _, n := range dbNotifications {
		notifications = append(notifications, toNotification(n))
	}

	s.writeJson(w, http.StatusOK, notifications)
}

func (s *App) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := s.db.MarkNotificationRead(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, dbError(err))
		return
	}

	s.writeJson(w, http.StatusOK, MessageResponse{Message: "notification marked as read"})
}
