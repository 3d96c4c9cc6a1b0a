package main

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vasiliy-maslov/tableorder/internal/config"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:           "tableorder",
	Short:         "Table ordering backend for a restaurant",
	Long:          `tableorder serves the table cart, menu composition and order submission API of a restaurant and manages its database.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("LOG_LEVEL", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

// loadConfig resolves the configuration and sets up the global logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper(), envFile)
	if err != nil {
		return nil, err
	}
	setupLogger(cfg)
	log.Debug().Str("env", cfg.App.Env).Str("cart_store", cfg.Cart.Store).Msg("Configuration loaded")
	return cfg, nil
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.App.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Logger = log.With().Str("service", "tableorder").Logger()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("tableorder failed")
		os.Exit(1)
	}
}
