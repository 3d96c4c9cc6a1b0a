package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/vasiliy-maslov/tableorder/internal/admin"
)

type LoginRequest struct {
	User     string `json:"user" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AdminHandler struct {
	auth         *admin.Authenticator
	secureCookie bool
	validate     *validator.Validate
}

// NewAdminHandler issues session cookies; secureCookie sets their Secure flag.
func NewAdminHandler(auth *admin.Authenticator, secureCookie bool) *AdminHandler {
	return &AdminHandler{auth: auth, secureCookie: secureCookie, validate: validator.New()}
}

func (h *AdminHandler) RegisterRoutes(router chi.Router) {
	router.Post("/admin/login", h.handleLogin)
	router.Post("/admin/logout", h.handleLogout)
}

func (h *AdminHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	token, expires, err := h.auth.Login(req.User, req.Password)
	if err != nil {
		respondWithServiceError(w, err, "Failed to open admin session")
		return
	}
	http.SetCookie(w, admin.SessionCookie(token, expires, h.secureCookie))
	respondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *AdminHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(admin.CookieName); err == nil {
		h.auth.Logout(cookie.Value)
	}
	http.SetCookie(w, admin.SessionCookie("", time.Time{}, h.secureCookie))
	respondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
