package http_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/tableorder/internal/admin"
	"github.com/vasiliy-maslov/tableorder/internal/config"
	handler "github.com/vasiliy-maslov/tableorder/internal/handler/http"
)

func newAdminRouter(t *testing.T, password string) (*chi.Mux, *admin.Authenticator) {
	t.Helper()
	auth, err := admin.NewAuthenticator(config.AdminConfig{User: "admin", Password: password})
	require.NoError(t, err)
	router := chi.NewRouter()
	handler.NewAdminHandler(auth, false).RegisterRoutes(router)
	return router, auth
}

func sessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == admin.CookieName {
			return c
		}
	}
	return nil
}

func TestAdminHandler_Login(t *testing.T) {
	tests := []struct {
		name       string
		password   string
		body       string
		wantStatus int
		wantCookie bool
	}{
		{name: "valid credentials", password: "s3cret", body: `{"user":"admin","password":"s3cret"}`, wantStatus: http.StatusOK, wantCookie: true},
		{name: "wrong password", password: "s3cret", body: `{"user":"admin","password":"nope"}`, wantStatus: http.StatusUnauthorized},
		{name: "wrong user", password: "s3cret", body: `{"user":"root","password":"s3cret"}`, wantStatus: http.StatusUnauthorized},
		{name: "missing password", password: "s3cret", body: `{"user":"admin"}`, wantStatus: http.StatusBadRequest},
		{name: "admin disabled", password: "", body: `{"user":"admin","password":"anything"}`, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, auth := newAdminRouter(t, tt.password)

			rr := serve(router, http.MethodPost, "/admin/login", tt.body)

			require.Equal(t, tt.wantStatus, rr.Code)
			cookie := sessionCookie(rr)
			if !tt.wantCookie {
				assert.Nil(t, cookie)
				return
			}
			require.NotNil(t, cookie)
			assert.True(t, cookie.HttpOnly)
			assert.Equal(t, "/", cookie.Path)
			assert.True(t, auth.Valid(cookie.Value))
			assert.JSONEq(t, `{"ok":true}`, rr.Body.String())
		})
	}
}

func TestAdminHandler_Logout(t *testing.T) {
	router, auth := newAdminRouter(t, "s3cret")
	rr := serve(router, http.MethodPost, "/admin/login", `{"user":"admin","password":"s3cret"}`)
	cookie := sessionCookie(rr)
	require.NotNil(t, cookie)

	req := httptest.NewRequest(http.MethodPost, "/admin/logout", strings.NewReader(""))
	req.AddCookie(cookie)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	cleared := sessionCookie(rr)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
	assert.False(t, auth.Valid(cookie.Value))
}
