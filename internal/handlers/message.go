package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rentalhub/apiserver/internal/auth"
	"github.com/rentalhub/apiserver/internal/services"
	"github.com/rentalhub/apiserver/internal/store"
)

// MessageHandler provides the endpoint for messaging a rental owner.
type MessageHandler struct {
	messageService *services.MessageService
}

func NewMessageHandler(messageService *services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// MessageRouter registers message routes on the given router.
func MessageRouter(r chi.Router, messageService *services.MessageService, requireUser func(http.Handler) http.Handler) {
	handler := NewMessageHandler(messageService)

	r.With(requireUser).Post("/", handler.SendMessage)
}

// SendMessage stores a message about a rental. The sender is always the
// authenticated user; the user_id field of the request is accepted but
// ignored.
func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" || req.RentalID < 1 {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	message, err := h.messageService.Send(r.Context(), req.RentalID, user.ID, req.Message)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "rental not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to send message")
		return
	}

	writeJSON(w, http.StatusOK, message)
}

type SendMessageRequest struct {
	Message  string `json:"message"`
	RentalID int    `json:"rental_id"`
	UserID   int    `json:"user_id"`
}
