package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rentalhub/apiserver/internal/auth"
	"github.com/rentalhub/apiserver/internal/services"
	"github.com/rentalhub/apiserver/internal/store"
	"github.com/rentalhub/apiserver/types"
)

const (
	maxMultipartMemory = 32 << 20
	formFieldName      = "name"
	formFieldSurface   = "surface"
	formFieldPrice     = "price"
	formFieldDesc      = "description"
	formFieldPicture   = "picture"
)

// RentalHandler provides HTTP handlers for rental listings.
type RentalHandler struct {
	rentalService  *services.RentalService
	messageService *services.MessageService
}

func NewRentalHandler(rentalService *services.RentalService, messageService *services.MessageService) *RentalHandler {
	return &RentalHandler{
		rentalService:  rentalService,
		messageService: messageService,
	}
}

// RentalRouter registers rental routes on the given router.
func RentalRouter(
	r chi.Router,
	rentalService *services.RentalService,
	messageService *services.MessageService,
	requireUser func(http.Handler) http.Handler,
) {
	handler := NewRentalHandler(rentalService, messageService)

	r.Get("/", handler.ListRentals)
	r.With(requireUser).Post("/", handler.CreateRental)
	r.Route("/{rentalID}", func(r chi.Router) {
		r.Get("/", handler.GetRental)
		r.With(requireUser).Put("/", handler.UpdateRental)
		r.With(requireUser).Get("/messages", handler.ListRentalMessages)
	})
}

func (h *RentalHandler) ListRentals(w http.ResponseWriter, r *http.Request) {
	rentals, err := h.rentalService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list rentals")
		return
	}
	writeJSON(w, http.StatusOK, RentalListResponse{Rentals: rentals})
}

func (h *RentalHandler) GetRental(w http.ResponseWriter, r *http.Request) {
	id, err := parseRentalID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rental, err := h.rentalService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "rental not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load rental")
		return
	}

	writeJSON(w, http.StatusOK, rental)
}

// CreateRental accepts a multipart form with the listing fields and an
// optional picture file.
func (h *RentalHandler) CreateRental(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	input, err := rentalInputFromForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var picture *services.PictureUpload
	if file, header, err := r.FormFile(formFieldPicture); err == nil {
		defer file.Close()
		picture = &services.PictureUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Reader:      file,
		}
	}

	rental, err := h.rentalService.Create(r.Context(), input, picture, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create rental")
		return
	}

	writeJSON(w, http.StatusCreated, rental)
}

// UpdateRental rewrites the listing fields; the picture is left untouched.
func (h *RentalHandler) UpdateRental(w http.ResponseWriter, r *http.Request) {
	id, err := parseRentalID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	input, err := rentalInputFromForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rental, err := h.rentalService.Update(r.Context(), id, input)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "rental not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update rental")
		return
	}

	writeJSON(w, http.StatusOK, rental)
}

func (h *RentalHandler) ListRentalMessages(w http.ResponseWriter, r *http.Request) {
	id, err := parseRentalID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	messages, err := h.messageService.ListByRental(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "rental not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}

	writeJSON(w, http.StatusOK, MessageListResponse{Messages: messages})
}

type RentalListResponse struct {
	Rentals []types.Rental `json:"rentals"`
}

type MessageListResponse struct {
	Messages []types.Message `json:"messages"`
}

func parseRentalID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "rentalID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid rental id %q", raw)
	}
	return id, nil
}

func rentalInputFromForm(r *http.Request) (services.RentalInput, error) {
	name := strings.TrimSpace(r.FormValue(formFieldName))
	description := strings.TrimSpace(r.FormValue(formFieldDesc))
	if name == "" || description == "" {
		return services.RentalInput{}, errors.New("missing required fields")
	}

	surface, err := strconv.Atoi(r.FormValue(formFieldSurface))
	if err != nil || surface < 1 {
		return services.RentalInput{}, errors.New("invalid surface")
	}

	price, err := strconv.ParseFloat(r.FormValue(formFieldPrice), 64)
	if err != nil || price < 0 {
		return services.RentalInput{}, errors.New("invalid price")
	}

	return services.RentalInput{
		Name:        name,
		Surface:     surface,
		Price:       price,
		Description: description,
	}, nil
}
