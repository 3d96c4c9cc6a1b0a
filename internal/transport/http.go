package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/vasiliy-maslov/tableorder/internal/admin"
	handler "github.com/vasiliy-maslov/tableorder/internal/handler/http"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Catalog *handler.CatalogHandler
	Menu    *handler.MenuHandler
	Cart    *handler.CartHandler
	Compose *handler.ComposeHandler
	Order   *handler.OrderHandler
	Admin   *handler.AdminHandler
	Auth    *admin.Authenticator
}

func NewRouter(h Handlers) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(handler.RequestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	h.Catalog.RegisterRoutes(r)
	h.Menu.RegisterRoutes(r)
	h.Cart.RegisterRoutes(r)
	h.Compose.RegisterRoutes(r)
	h.Order.RegisterRoutes(r)
	h.Admin.RegisterRoutes(r)

	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireSession)
		h.Catalog.RegisterAdminRoutes(r)
		h.Menu.RegisterAdminRoutes(r)
	})

	return r
}
