package http_test

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/tableorder/internal/cart"
	handler "github.com/vasiliy-maslov/tableorder/internal/handler/http"
)

func newCartRouter() *chi.Mux {
	router := chi.NewRouter()
	handler.NewCartHandler(cart.NewService(cart.NewMemoryStore())).RegisterRoutes(router)
	return router
}

func decodeCart(t *testing.T, body []byte) handler.CartResponse {
	t.Helper()
	var resp handler.CartResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp
}

func TestCartHandler_Flow(t *testing.T) {
	router := newCartRouter()

	rr := serve(router, http.MethodGet, "/tables/7/cart", "")
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeCart(t, rr.Body.Bytes())
	assert.Empty(t, resp.Cart.Lines)
	assert.Equal(t, 1, resp.Cart.PartySize)

	add := `{"productKey":"gyoza","name":"Gyoza","unitPriceCents":450,"assigneeId":"P1"}`
	serve(router, http.MethodPost, "/tables/7/cart", add)
	rr = serve(router, http.MethodPost, "/tables/7/cart", add)
	require.Equal(t, http.StatusOK, rr.Code)
	resp = decodeCart(t, rr.Body.Bytes())
	require.Len(t, resp.Cart.Lines, 1)
	assert.Equal(t, 2, resp.Cart.Lines[0].Qty)
	assert.Equal(t, int64(900), resp.Total)

	rr = serve(router, http.MethodPatch, "/tables/7/cart", `{"productKey":"gyoza","unitPriceCents":450,"assigneeId":"P1","delta":-1}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(450), decodeCart(t, rr.Body.Bytes()).Total)

	rr = serve(router, http.MethodPatch, "/tables/7/cart", `{"partySize":30}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, cart.MaxPartySize, decodeCart(t, rr.Body.Bytes()).Cart.PartySize)

	rr = serve(router, http.MethodPatch, "/tables/7/cart", `{"tableComment":"  allergie  "}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "allergie", *decodeCart(t, rr.Body.Bytes()).Cart.TableComment)

	rr = serve(router, http.MethodPatch, "/tables/7/cart", `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	key := resp.Cart.Lines[0].Key
	rr = serve(router, http.MethodDelete, "/tables/7/cart/lines/"+url.PathEscape(key), "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decodeCart(t, rr.Body.Bytes()).Cart.Lines)

	serve(router, http.MethodPost, "/tables/7/cart", add)
	rr = serve(router, http.MethodDelete, "/tables/7/cart", "")
	require.Equal(t, http.StatusOK, rr.Code)
	cleared := decodeCart(t, rr.Body.Bytes())
	assert.Empty(t, cleared.Cart.Lines)
	assert.Nil(t, cleared.Cart.TableComment)
	assert.Equal(t, cart.MaxPartySize, cleared.Cart.PartySize)
}

func TestCartHandler_AddValidation(t *testing.T) {
	router := newCartRouter()

	rr := serve(router, http.MethodPost, "/tables/7/cart", `{"name":"Gyoza","unitPriceCents":-5}`)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	var resp handler.ValidationErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "Validation failed", resp.Error)
	assert.Contains(t, resp.Details, "ProductKey")
	assert.Contains(t, resp.Details, "UnitPriceCents")
}
