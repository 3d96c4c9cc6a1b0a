package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vasiliy-maslov/tableorder/internal/admin"
	"github.com/vasiliy-maslov/tableorder/internal/cart"
	"github.com/vasiliy-maslov/tableorder/internal/catalog"
	"github.com/vasiliy-maslov/tableorder/internal/compose"
	"github.com/vasiliy-maslov/tableorder/internal/config"
	"github.com/vasiliy-maslov/tableorder/internal/db"
	"github.com/vasiliy-maslov/tableorder/internal/events"
	handler "github.com/vasiliy-maslov/tableorder/internal/handler/http"
	"github.com/vasiliy-maslov/tableorder/internal/menu"
	"github.com/vasiliy-maslov/tableorder/internal/order"
	"github.com/vasiliy-maslov/tableorder/internal/transport"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func init() {
	serveCmd.Flags().String("port", "", "HTTP port (overrides APP_PORT)")
	serveCmd.Flags().Bool("auto-migrate", false, "apply pending migrations on startup")
	_ = viper.BindPFlag("APP_PORT", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("AUTO_MIGRATE", serveCmd.Flags().Lookup("auto-migrate"))
}

func newPublisher(cfg config.NATSConfig) (events.Publisher, error) {
	if cfg.URL == "" {
		log.Info().Msg("NATS_URL not set, order events are not published")
		return events.Noop{}, nil
	}
	return events.NewNATSPublisher(cfg.URL)
}

func newCartStore(cfg config.CartConfig, pg *db.Postgres) cart.Store {
	if cfg.Store == config.CartStorePostgres {
		log.Info().Msg("Table carts persisted in PostgreSQL")
		return cart.NewPostgresStore(pg.Pool)
	}
	log.Info().Msg("Table carts kept in memory")
	return cart.NewMemoryStore()
}

func serve(ctx context.Context, cfg *config.Config) error {
	log.Info().Msg("tableorder starting...")

	dbConn, err := db.New(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbConn.Close()

	publisher, err := newPublisher(cfg.NATS)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close event publisher")
		}
	}()

	auth, err := admin.NewAuthenticator(cfg.Admin)
	if err != nil {
		return err
	}

	catalogSvc := catalog.NewService(catalog.NewRepository(dbConn.Pool))
	menuSvc := menu.NewService(menu.NewPostgresRepository(dbConn.Pool))
	cartSvc := cart.NewService(newCartStore(cfg.Cart, dbConn))
	composeSvc := compose.NewService(compose.NewDefaultEngine(), menuSvc, catalogSvc, cartSvc)
	orderSvc := order.NewService(order.NewRepository(dbConn.Pool), catalogSvc, cartSvc, publisher)

	router := transport.NewRouter(transport.Handlers{
		Catalog: handler.NewCatalogHandler(catalogSvc),
		Menu:    handler.NewMenuHandler(menuSvc),
		Cart:    handler.NewCartHandler(cartSvc),
		Compose: handler.NewComposeHandler(composeSvc),
		Order:   handler.NewOrderHandler(orderSvc),
		Admin:   handler.NewAdminHandler(auth, !cfg.IsDevelopment()),
		Auth:    auth,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	log.Info().Msg("Server stopped")
	return nil
}
