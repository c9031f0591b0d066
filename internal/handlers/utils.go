package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rentalhub/apiserver/internal/auth"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// AuthReject is the shared failure handler for the authentication middleware.
// All token failures collapse to one opaque 401; only storage faults surface
// as server errors.
func AuthReject(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrTokenMalformed),
		errors.Is(err, auth.ErrTokenSignature),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrIdentityNotFound):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
