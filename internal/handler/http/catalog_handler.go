package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/vasiliy-maslov/tableorder/internal/catalog"
)

type MenuItemRequest struct {
	Name        string  `json:"name" validate:"required"`
	PriceCents  int64   `json:"priceCents" validate:"gte=0"`
	Category    string  `json:"category" validate:"required"`
	Available   *bool   `json:"available,omitempty"`
	Position    int     `json:"position"`
	Description *string `json:"description,omitempty"`
}

func (req MenuItemRequest) toItem() *catalog.MenuItem {
	item := &catalog.MenuItem{
		Name:        req.Name,
		PriceCents:  req.PriceCents,
		Category:    req.Category,
		Available:   true,
		Position:    req.Position,
		Description: req.Description,
	}
	if req.Available != nil {
		item.Available = *req.Available
	}
	return item
}

type CatalogHandler struct {
	service  catalog.Service
	validate *validator.Validate
}

func NewCatalogHandler(service catalog.Service) *CatalogHandler {
	return &CatalogHandler{service: service, validate: validator.New()}
}

func (h *CatalogHandler) RegisterRoutes(router chi.Router) {
	router.Get("/menu", h.handleListMenu)
}

// RegisterAdminRoutes mounts catalog maintenance; callers guard the router.
func (h *CatalogHandler) RegisterAdminRoutes(router chi.Router) {
	router.Get("/admin/menu-items", h.handleListAll)
	router.Post("/admin/menu-items", h.handleCreate)
	router.Patch("/admin/menu-items/{id}", h.handleUpdate)
	router.Delete("/admin/menu-items/{id}", h.handleDelete)
}

func (h *CatalogHandler) handleListMenu(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListAvailable(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to list menu items")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *CatalogHandler) handleListAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListItems(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to list menu items")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *CatalogHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req MenuItemRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	item, err := h.service.CreateItem(r.Context(), req.toItem())
	if err != nil {
		respondWithServiceError(w, err, "Failed to create menu item")
		return
	}
	respondWithJSON(w, http.StatusCreated, item)
}

func (h *CatalogHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, chi.URLParam(r, "id"), "item_id")
	if !ok {
		return
	}
	var req MenuItemRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	item := req.toItem()
	item.ID = id
	updated, err := h.service.UpdateItem(r.Context(), item)
	if err != nil {
		respondWithServiceError(w, err, "Failed to update menu item")
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *CatalogHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, chi.URLParam(r, "id"), "item_id")
	if !ok {
		return
	}
	if err := h.service.DeleteItem(r.Context(), id); err != nil {
		respondWithServiceError(w, err, "Failed to delete menu item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
