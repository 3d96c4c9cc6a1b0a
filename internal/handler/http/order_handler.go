package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/tableorder/internal/order"
)

const (
	CodeMalformed   = "MALFORMED"
	CodeEmptyCart   = "EMPTY_CART"
	CodeServerError = "SERVER_ERROR"
)

// SubmissionErrorResponse is the error body of both submission endpoints.
type SubmissionErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// OptionalString tells an explicit JSON null apart from an absent field.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

type SubmitTableRequest struct {
	Items        []order.SubmitItem `json:"items,omitempty"`
	TableComment OptionalString     `json:"tableComment"`
	PartySize    *int               `json:"partySize,omitempty"`
	Total        *int64             `json:"total,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type OrderHandler struct {
	service  order.Service
	validate *validator.Validate
}

func NewOrderHandler(service order.Service) *OrderHandler {
	return &OrderHandler{service: service, validate: validator.New()}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Post("/orders", h.handleSubmit)
	router.Get("/orders", h.handleList)
	router.Get("/orders/{id}", h.handleGet)
	router.Patch("/orders/{id}", h.handleUpdateStatus)
	router.Post("/tables/{tableId}/submit", h.handleSubmitTable)
}

func respondWithSubmissionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, order.ErrMalformedRequest):
		respondWithJSON(w, http.StatusBadRequest, SubmissionErrorResponse{Code: CodeMalformed, Message: err.Error()})
	case errors.Is(err, order.ErrEmptyCart):
		respondWithJSON(w, http.StatusBadRequest, SubmissionErrorResponse{Code: CodeEmptyCart, Message: "Cart is empty"})
	default:
		log.Error().Err(err).Msg("Failed to submit order via service")
		respondWithJSON(w, http.StatusInternalServerError, SubmissionErrorResponse{Code: CodeServerError, Message: "Failed to submit order"})
	}
}

// decodeSubmission decodes an optional JSON body; an empty body leaves dst
// untouched.
func decodeSubmission(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("Failed to decode submission body")
		respondWithJSON(w, http.StatusBadRequest, SubmissionErrorResponse{Code: CodeMalformed, Message: "Invalid request payload"})
		return false
	}
	return true
}

func (h *OrderHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req order.SubmitRequest
	if !decodeSubmission(w, r, &req) {
		return
	}
	o, err := h.service.Submit(r.Context(), req)
	if err != nil {
		respondWithSubmissionError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]interface{}{"order": o})
}

func (h *OrderHandler) handleSubmitTable(w http.ResponseWriter, r *http.Request) {
	var req SubmitTableRequest
	if !decodeSubmission(w, r, &req) {
		return
	}
	o, err := h.service.SubmitTableCart(r.Context(), chi.URLParam(r, "tableId"), order.Overrides{
		Items:      req.Items,
		Comment:    req.TableComment.Value,
		CommentSet: req.TableComment.Set,
		PartySize:  req.PartySize,
		Total:      req.Total,
	})
	if err != nil {
		respondWithSubmissionError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]interface{}{"id": o.ID})
}

func (h *OrderHandler) handleList(w http.ResponseWriter, r *http.Request) {
	filter := order.ListFilter{TableID: strings.TrimSpace(r.URL.Query().Get("tableId"))}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := order.ParseStatus(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid status filter")
			return
		}
		filter.Status = &status
	}

	orders, err := h.service.List(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, err, "Failed to list orders")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

func (h *OrderHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, chi.URLParam(r, "id"), "order_id")
	if !ok {
		return
	}
	o, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get order")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"order": o})
}

func (h *OrderHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, chi.URLParam(r, "id"), "order_id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	o, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		respondWithServiceError(w, err, "Failed to update order status")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"order": o})
}
