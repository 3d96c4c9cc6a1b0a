// Package dbtest opens the integration database used by repository tests.
// Tests are skipped unless DB_HOST_TEST is set.
package dbtest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vasiliy-maslov/tableorder/internal/config"
	"github.com/vasiliy-maslov/tableorder/internal/db"
)

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func Config() config.PostgresConfig {
	return config.PostgresConfig{
		Host:            os.Getenv("DB_HOST_TEST"),
		Port:            getEnv("DB_PORT_TEST", "5432"),
		User:            getEnv("DB_USER_TEST", "postgres"),
		Password:        getEnv("DB_PASSWORD_TEST", "postgres"),
		DBName:          getEnv("DB_NAME_TEST", "tableorder_test"),
		SSLMode:         "disable",
		MaxConns:        4,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
		AutoMigrate:     true,
	}
}

// Open connects to the test database, applies migrations and truncates the
// given tables before and after the test.
func Open(t *testing.T, tables ...string) *pgxpool.Pool {
	t.Helper()
	if os.Getenv("DB_HOST_TEST") == "" {
		t.Skip("DB_HOST_TEST not set, skipping Postgres integration test")
	}

	ctx := context.Background()
	pg, err := db.New(ctx, Config())
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	truncate := func() {
		for _, table := range tables {
			if _, err := pg.Pool.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
				t.Fatalf("Failed to truncate table %s: %v", table, err)
			}
		}
	}
	truncate()

	t.Cleanup(func() {
		truncate()
		pg.Close()
	})

	return pg.Pool
}
