package http_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	handler "github.com/vasiliy-maslov/tableorder/internal/handler/http"
	"github.com/vasiliy-maslov/tableorder/internal/order"
)

func newOrderRouter(svc order.Service) *chi.Mux {
	router := chi.NewRouter()
	handler.NewOrderHandler(svc).RegisterRoutes(router)
	return router
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestOrderHandler_Submit(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{name: "created", body: `{"tableId":"7","items":[{"name":"Gyoza","qty":2}]}`, wantStatus: http.StatusCreated},
		{name: "malformed json", body: `{"tableId":`, wantStatus: http.StatusBadRequest, wantCode: handler.CodeMalformed},
		{name: "unknown field", body: `{"tableId":"7","foo":1}`, wantStatus: http.StatusBadRequest, wantCode: handler.CodeMalformed},
		{name: "missing table", body: `{"items":[{"name":"Gyoza","qty":2}]}`, serviceErr: order.ErrMalformedRequest, wantStatus: http.StatusBadRequest, wantCode: handler.CodeMalformed},
		{name: "empty cart", body: `{"tableId":"7","items":[]}`, serviceErr: order.ErrEmptyCart, wantStatus: http.StatusBadRequest, wantCode: handler.CodeEmptyCart},
		{name: "store down", body: `{"tableId":"7","items":[{"name":"Gyoza","qty":2}]}`, serviceErr: errors.New("db down"), wantStatus: http.StatusInternalServerError, wantCode: handler.CodeServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockOrderService)
			created := &order.Order{ID: uuid.Must(uuid.NewV4()), TableID: "7", Status: order.StatusNew, TotalCents: 900}
			if tt.serviceErr != nil {
				svc.On("Submit", mock.Anything, mock.Anything).Return(nil, tt.serviceErr).Once()
			} else {
				svc.On("Submit", mock.Anything, mock.MatchedBy(func(req order.SubmitRequest) bool {
					return req.TableID == "7" && len(req.Items) == 1 && req.Items[0].Qty == 2
				})).Return(created, nil).Once()
			}

			rr := serve(newOrderRouter(svc), http.MethodPost, "/orders", tt.body)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantCode != "" {
				var resp handler.SubmissionErrorResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, tt.wantCode, resp.Code)
				assert.NotEmpty(t, resp.Message)
				return
			}
			var resp struct {
				Order order.Order `json:"order"`
			}
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.Equal(t, created.ID, resp.Order.ID)
			assert.Equal(t, order.StatusNew, resp.Order.Status)
		})
	}
}

func TestOrderHandler_SubmitTable(t *testing.T) {
	svc := new(MockOrderService)
	id := uuid.Must(uuid.NewV4())
	svc.On("SubmitTableCart", mock.Anything, "12", order.Overrides{}).Return(&order.Order{ID: id}, nil).Once()

	rr := serve(newOrderRouter(svc), http.MethodPost, "/tables/12/submit", "")

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"id":"`+id.String()+`"}`, rr.Body.String())
	svc.AssertExpectations(t)
}

func TestOrderHandler_SubmitTableOverrides(t *testing.T) {
	svc := new(MockOrderService)
	svc.On("SubmitTableCart", mock.Anything, "3", mock.MatchedBy(func(o order.Overrides) bool {
		return o.Comment != nil && *o.Comment == "vite" && o.PartySize != nil && *o.PartySize == 4 && len(o.Items) == 0
	})).Return(nil, order.ErrEmptyCart).Once()

	rr := serve(newOrderRouter(svc), http.MethodPost, "/tables/3/submit", `{"tableComment":"vite","partySize":4}`)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"code":"EMPTY_CART","message":"Cart is empty"}`, rr.Body.String())
}

func TestOrderHandler_SubmitTableCommentPresence(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantSet bool
		wantNil bool
	}{
		{name: "absent", body: `{"partySize":2}`, wantSet: false, wantNil: true},
		{name: "explicit null", body: `{"tableComment":null}`, wantSet: true, wantNil: true},
		{name: "value", body: `{"tableComment":"vite"}`, wantSet: true, wantNil: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockOrderService)
			svc.On("SubmitTableCart", mock.Anything, "3", mock.MatchedBy(func(o order.Overrides) bool {
				return o.CommentSet == tt.wantSet && (o.Comment == nil) == tt.wantNil
			})).Return(&order.Order{ID: uuid.Must(uuid.NewV4())}, nil).Once()

			rr := serve(newOrderRouter(svc), http.MethodPost, "/tables/3/submit", tt.body)

			assert.Equal(t, http.StatusCreated, rr.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_List(t *testing.T) {
	svc := new(MockOrderService)
	ready := order.StatusReady
	svc.On("List", mock.Anything, order.ListFilter{Status: &ready, TableID: "5"}).
		Return([]order.Order{{ID: uuid.Must(uuid.NewV4()), Status: ready}}, nil).Once()
	router := newOrderRouter(svc)

	rr := serve(router, http.MethodGet, "/orders?status=ready&tableId=5", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Orders []order.Order `json:"orders"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Len(t, resp.Orders, 1)

	rr = serve(router, http.MethodGet, "/orders?status=PAID", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertExpectations(t)
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	id := uuid.Must(uuid.NewV4())
	tests := []struct {
		name       string
		target     string
		body       string
		setup      func(svc *MockOrderService)
		wantStatus int
	}{
		{
			name:   "updated",
			target: "/orders/" + id.String(),
			body:   `{"status":"SERVED"}`,
			setup: func(svc *MockOrderService) {
				svc.On("UpdateStatus", mock.Anything, id, "SERVED").Return(&order.Order{ID: id, Status: order.StatusServed}, nil).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "invalid status",
			target: "/orders/" + id.String(),
			body:   `{"status":"DELIVERED"}`,
			setup: func(svc *MockOrderService) {
				svc.On("UpdateStatus", mock.Anything, id, "DELIVERED").Return(nil, order.ErrInvalidStatus).Once()
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "unknown order",
			target: "/orders/" + id.String(),
			body:   `{"status":"READY"}`,
			setup: func(svc *MockOrderService) {
				svc.On("UpdateStatus", mock.Anything, id, "READY").Return(nil, order.ErrOrderNotFound).Once()
			},
			wantStatus: http.StatusNotFound,
		},
		{name: "missing status", target: "/orders/" + id.String(), body: `{}`, setup: func(*MockOrderService) {}, wantStatus: http.StatusBadRequest},
		{name: "bad id", target: "/orders/not-a-uuid", body: `{"status":"READY"}`, setup: func(*MockOrderService) {}, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockOrderService)
			tt.setup(svc)

			rr := serve(newOrderRouter(svc), http.MethodPatch, tt.target, tt.body)

			assert.Equal(t, tt.wantStatus, rr.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_Get(t *testing.T) {
	svc := new(MockOrderService)
	id := uuid.Must(uuid.NewV4())
	svc.On("Get", mock.Anything, id).Return(nil, order.ErrOrderNotFound).Once()

	rr := serve(newOrderRouter(svc), http.MethodGet, "/orders/"+id.String(), "")

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"order not found"}`, rr.Body.String())
}
