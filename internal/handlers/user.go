package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rentalhub/apiserver/internal/services"
	"github.com/rentalhub/apiserver/internal/store"
)

// UserHandler provides the user lookup endpoint.
type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UserRouter registers user routes on the given router.
func UserRouter(r chi.Router, userService *services.UserService, requireUser func(http.Handler) http.Handler) {
	handler := NewUserHandler(userService)

	r.With(requireUser).Get("/{userID}", handler.GetUser)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "userID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid user id %q", raw))
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}
