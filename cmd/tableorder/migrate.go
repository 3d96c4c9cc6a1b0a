package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/vasiliy-maslov/tableorder/internal/catalog"
	"github.com/vasiliy-maslov/tableorder/internal/config"
	"github.com/vasiliy-maslov/tableorder/internal/db"
	"github.com/vasiliy-maslov/tableorder/internal/menu"
	"github.com/vasiliy-maslov/tableorder/internal/seed"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return db.MigrateUp(cfg.Postgres)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Roll back the given number of migrations, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps := 0
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return fmt.Errorf("steps must be a positive integer, got %q", args[0])
			}
			steps = n
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return db.MigrateDown(cfg.Postgres, steps)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Upsert the hot menus and their required catalog items",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runSeed(cmd.Context(), cfg.Postgres)
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
}

func runSeed(ctx context.Context, cfg config.PostgresConfig) error {
	dbConn, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbConn.Close()

	seeder := seed.NewSeeder(menu.NewPostgresRepository(dbConn.Pool), catalog.NewRepository(dbConn.Pool))
	sum, err := seeder.Run(ctx)
	if err != nil {
		return err
	}
	log.Info().
		Int("menus_created", sum.MenusCreated).
		Int("menus_updated", sum.MenusUpdated).
		Int("items_created", sum.ItemsCreated).
		Int("items_updated", sum.ItemsUpdated).
		Int("descriptions", sum.Descriptions).
		Int("legacy_retired", sum.LegacyRetired).
		Msg("Seed completed")
	return nil
}
