package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/vasiliy-maslov/tableorder/internal/compose"
)

type ComposeRequest struct {
	MenuID     uuid.UUID                 `json:"menuId" validate:"required"`
	Selections map[uuid.UUID][]uuid.UUID `json:"selections"`
	AssigneeID string                    `json:"assigneeId,omitempty"`
}

type ComposeHandler struct {
	service  compose.Service
	validate *validator.Validate
}

func NewComposeHandler(service compose.Service) *ComposeHandler {
	return &ComposeHandler{service: service, validate: validator.New()}
}

func (h *ComposeHandler) RegisterRoutes(router chi.Router) {
	router.Get("/menus/{id}/compose", h.handleOpen)
	router.Post("/tables/{tableId}/compose", h.handleAddToCart)
}

func (h *ComposeHandler) handleOpen(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, chi.URLParam(r, "id"), "menu_id")
	if !ok {
		return
	}
	view, err := h.service.Open(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to open menu")
		return
	}
	respondWithJSON(w, http.StatusOK, view)
}

func (h *ComposeHandler) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	var req ComposeRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	c, err := h.service.AddToCart(r.Context(), chi.URLParam(r, "tableId"), compose.AddToCartRequest{
		MenuID:     req.MenuID,
		Selections: req.Selections,
		AssigneeID: req.AssigneeID,
	})
	if err != nil {
		var selErr *compose.SelectionError
		if errors.As(err, &selErr) {
			details := make(map[string]string, len(selErr.Errors))
			for groupID, msg := range selErr.Errors {
				details[groupID.String()] = msg
			}
			respondWithJSON(w, http.StatusUnprocessableEntity, ValidationErrorResponse{
				Error:   "Menu selection is incomplete",
				Details: details,
			})
			return
		}
		respondWithServiceError(w, err, "Failed to add menu to cart")
		return
	}
	respondWithJSON(w, http.StatusOK, newCartResponse(c))
}
