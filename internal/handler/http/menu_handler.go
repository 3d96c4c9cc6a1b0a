package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/vasiliy-maslov/tableorder/internal/menu"
)

type SelectionGroupRequest struct {
	Name               string   `json:"name" validate:"required"`
	CategoryFilter     string   `json:"categoryFilter,omitempty"`
	CategoryFilters    []string `json:"categoryFilters,omitempty"`
	MutualExclusionTag string   `json:"mutualExclusionTag,omitempty"`
	MinChoices         int      `json:"minChoices" validate:"gte=0"`
	MaxChoices         int      `json:"maxChoices" validate:"min=1"`
	Position           int      `json:"position"`
}

type MenuRequest struct {
	Name       string                  `json:"name" validate:"required"`
	PriceCents int64                   `json:"priceCents" validate:"gte=0"`
	Active     *bool                   `json:"active,omitempty"`
	Position   int                     `json:"position"`
	Groups     []SelectionGroupRequest `json:"groups" validate:"required,min=1,dive"`
}

func (req MenuRequest) toDefinition() *menu.Definition {
	def := &menu.Definition{
		Name:       req.Name,
		PriceCents: req.PriceCents,
		Active:     true,
		Position:   req.Position,
		Groups:     make([]menu.SelectionGroup, len(req.Groups)),
	}
	if req.Active != nil {
		def.Active = *req.Active
	}
	for i, g := range req.Groups {
		def.Groups[i] = menu.SelectionGroup{
			Name:               g.Name,
			CategoryFilter:     g.CategoryFilter,
			CategoryFilters:    g.CategoryFilters,
			MutualExclusionTag: g.MutualExclusionTag,
			MinChoices:         g.MinChoices,
			MaxChoices:         g.MaxChoices,
			Position:           g.Position,
		}
		if def.Groups[i].Position == 0 {
			def.Groups[i].Position = i + 1
		}
	}
	return def
}

type MenuHandler struct {
	service  menu.Service
	validate *validator.Validate
}

func NewMenuHandler(service menu.Service) *MenuHandler {
	return &MenuHandler{service: service, validate: validator.New()}
}

func (h *MenuHandler) RegisterRoutes(router chi.Router) {
	router.Get("/menus", h.handleListActive)
	router.Get("/menus/{id}", h.handleGet)
}

// RegisterAdminRoutes mounts menu maintenance; callers guard the router.
func (h *MenuHandler) RegisterAdminRoutes(router chi.Router) {
	router.Get("/admin/menus", h.handleListAll)
	router.Post("/admin/menus", h.handleCreate)
	router.Patch("/admin/menus/{id}", h.handleUpdate)
	router.Delete("/admin/menus/{id}", h.handleDelete)
}

func (h *MenuHandler) handleListActive(w http.ResponseWriter, r *http.Request) {
	defs, err := h.service.ListActive(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to list menus")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"menus": defs})
}

func (h *MenuHandler) handleListAll(w http.ResponseWriter, r *http.Request) {
	defs, err := h.service.ListAll(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to list menus")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"menus": defs})
}

func (h *MenuHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, chi.URLParam(r, "id"), "menu_id")
	if !ok {
		return
	}
	def, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get menu")
		return
	}
	respondWithJSON(w, http.StatusOK, def)
}

func (h *MenuHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req MenuRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	def, err := h.service.Create(r.Context(), req.toDefinition())
	if err != nil {
		respondWithServiceError(w, err, "Failed to create menu")
		return
	}
	respondWithJSON(w, http.StatusCreated, def)
}

func (h *MenuHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, chi.URLParam(r, "id"), "menu_id")
	if !ok {
		return
	}
	var req MenuRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	def := req.toDefinition()
	def.ID = id
	updated, err := h.service.Update(r.Context(), def)
	if err != nil {
		respondWithServiceError(w, err, "Failed to update menu")
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *MenuHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, chi.URLParam(r, "id"), "menu_id")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, err, "Failed to delete menu")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
