package http

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/vasiliy-maslov/tableorder/internal/cart"
)

type CartResponse struct {
	Cart  cart.TableCart `json:"cart"`
	Total int64          `json:"total"`
}

func newCartResponse(c cart.TableCart) CartResponse {
	return CartResponse{Cart: c, Total: c.TotalCents()}
}

type AddCartItemRequest struct {
	ProductKey     string `json:"productKey" validate:"required"`
	Name           string `json:"name" validate:"required"`
	UnitPriceCents int64  `json:"unitPriceCents" validate:"gte=0"`
	AssigneeID     string `json:"assigneeId,omitempty"`
	Note           string `json:"note,omitempty"`
}

// PatchCartRequest carries exactly one mutation: a party size, a table
// comment, or a quantity change of the line identified by the other fields.
type PatchCartRequest struct {
	PartySize      *float64 `json:"partySize,omitempty"`
	TableComment   *string  `json:"tableComment,omitempty"`
	ProductKey     string   `json:"productKey,omitempty"`
	UnitPriceCents int64    `json:"unitPriceCents,omitempty"`
	AssigneeID     string   `json:"assigneeId,omitempty"`
	Note           string   `json:"note,omitempty"`
	Delta          int      `json:"delta,omitempty"`
}

type CartHandler struct {
	service  cart.Service
	validate *validator.Validate
}

func NewCartHandler(service cart.Service) *CartHandler {
	return &CartHandler{service: service, validate: validator.New()}
}

func (h *CartHandler) RegisterRoutes(router chi.Router) {
	router.Get("/tables/{tableId}/cart", h.handleGet)
	router.Post("/tables/{tableId}/cart", h.handleAdd)
	router.Patch("/tables/{tableId}/cart", h.handlePatch)
	router.Delete("/tables/{tableId}/cart", h.handleClear)
	router.Delete("/tables/{tableId}/cart/lines/{key}", h.handleRemoveLine)
}

func (h *CartHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "tableId"))
	if err != nil {
		respondWithServiceError(w, err, "Failed to load cart")
		return
	}
	respondWithJSON(w, http.StatusOK, newCartResponse(c))
}

func (h *CartHandler) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req AddCartItemRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	c, err := h.service.AddItem(r.Context(), chi.URLParam(r, "tableId"), cart.AddItemInput{
		ProductKey:     req.ProductKey,
		Name:           req.Name,
		UnitPriceCents: req.UnitPriceCents,
		AssigneeID:     req.AssigneeID,
		Note:           req.Note,
	})
	if err != nil {
		respondWithServiceError(w, err, "Failed to add item to cart")
		return
	}
	respondWithJSON(w, http.StatusOK, newCartResponse(c))
}

func (h *CartHandler) handlePatch(w http.ResponseWriter, r *http.Request) {
	var req PatchCartRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	tableID := chi.URLParam(r, "tableId")

	var (
		c   cart.TableCart
		err error
	)
	switch {
	case req.PartySize != nil:
		c, err = h.service.SetPartySize(r.Context(), tableID, *req.PartySize)
	case req.TableComment != nil:
		c, err = h.service.SetComment(r.Context(), tableID, *req.TableComment)
	case strings.TrimSpace(req.ProductKey) != "" && req.Delta != 0:
		c, err = h.service.ChangeQty(r.Context(), tableID, cart.ChangeQtyInput{
			ProductKey:     strings.TrimSpace(req.ProductKey),
			UnitPriceCents: req.UnitPriceCents,
			AssigneeID:     req.AssigneeID,
			Note:           req.Note,
			Delta:          req.Delta,
		})
	default:
		respondWithError(w, http.StatusBadRequest, "Expected partySize, tableComment or productKey with delta")
		return
	}
	if err != nil {
		respondWithServiceError(w, err, "Failed to update cart")
		return
	}
	respondWithJSON(w, http.StatusOK, newCartResponse(c))
}

func (h *CartHandler) handleClear(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Clear(r.Context(), chi.URLParam(r, "tableId"))
	if err != nil {
		respondWithServiceError(w, err, "Failed to clear cart")
		return
	}
	respondWithJSON(w, http.StatusOK, newCartResponse(c))
}

func (h *CartHandler) handleRemoveLine(w http.ResponseWriter, r *http.Request) {
	key, err := url.PathUnescape(chi.URLParam(r, "key"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid line key")
		return
	}
	c, err := h.service.RemoveLine(r.Context(), chi.URLParam(r, "tableId"), key)
	if err != nil {
		respondWithServiceError(w, err, "Failed to remove cart line")
		return
	}
	respondWithJSON(w, http.StatusOK, newCartResponse(c))
}
