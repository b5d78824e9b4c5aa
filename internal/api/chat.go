package api

import (
	"net/http"

	"github.com/npezzotti/smartshop/internal/types"
)

// chatOwner returns the user id from the path when the caller may read
// that user's conversation.
func (s *App) chatOwner(w http.ResponseWriter, r *http.Request) (string, bool) {
	userId := r.PathValue("userId")
	session, _ := SessionFrom(r.Context())
	if userId != session.UserId && !session.IsAdmin() {
		s.writeError(w, r, NewForbiddenError())
		return "", false
	}

	return userId, true
}

func (s *App) getChatHistory(w http.ResponseWriter, r *http.Request) {
	userId, ok := s.chatOwner(w, r)
	if !ok {
		return
	}

	dbMessages, err := s.db.ListMessages(r.Context(), userId)
	if err != nil {
		s.writeError(w, r, NewInternalServerError(err))
		return
	}

	messages := make([]types.ChatMessage, 0, len(dbMessages))
	for _, m := range dbMessages {
		messages = append(messages, toChatMessage(m))
	}

	s.writeJson(w, http.StatusOK, messages)
}

func (s *App) markChatRead(w http.ResponseWriter, r *http.Request) {
	userId, ok := s.chatOwner(w, r)
	if !ok {
		return
	}

	if err := s.db.MarkMessagesRead(r.Context(), userId); err != nil {
		s.writeError(w, r, NewInternalServerError(err))
		return
	}

	s.writeJson(w, http.StatusOK, MessageResponse{Message: "messages marked as read"})
}
