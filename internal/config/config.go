package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	CartStoreMemory   = "memory"
	CartStorePostgres = "postgres"
)

type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Cart     CartConfig
	NATS     NATSConfig
	Admin    AdminConfig
}

type AppConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	AutoMigrate     bool
}

// DSN returns the key/value connection string understood by pgx.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// MigrateURL returns the pgx5:// URL used by golang-migrate.
func (p PostgresConfig) MigrateURL() string {
	u := url.URL{
		Scheme:   "pgx5",
		User:     url.UserPassword(p.User, p.Password),
		Host:     net.JoinHostPort(p.Host, p.Port),
		Path:     "/" + p.DBName,
		RawQuery: url.Values{"sslmode": {p.SSLMode}}.Encode(),
	}
	return u.String()
}

type CartConfig struct {
	Store string
}

type NATSConfig struct {
	URL string
}

type AdminConfig struct {
	User     string
	Password string
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("DB_MAX_CONN_LIFETIME", "30m")
	v.SetDefault("AUTO_MIGRATE", false)
	v.SetDefault("CART_STORE", CartStoreMemory)
	v.SetDefault("NATS_URL", "")
	v.SetDefault("ADMIN_USER", "admin")
	v.SetDefault("ADMIN_PASSWORD", "")
}

// Load reads an optional .env file into the process environment and then
// resolves every key through v, so flags bound to v take precedence.
func Load(v *viper.Viper, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	setDefaults(v)
	v.AutomaticEnv()

	lifetime, err := time.ParseDuration(v.GetString("DB_MAX_CONN_LIFETIME"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONN_LIFETIME: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Port:     v.GetString("APP_PORT"),
			Env:      v.GetString("APP_ENV"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		Postgres: PostgresConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetString("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxConns:        v.GetInt32("DB_MAX_CONNS"),
			MinConns:        v.GetInt32("DB_MIN_CONNS"),
			MaxConnLifetime: lifetime,
			AutoMigrate:     v.GetBool("AUTO_MIGRATE"),
		},
		Cart: CartConfig{
			Store: strings.ToLower(v.GetString("CART_STORE")),
		},
		NATS: NATSConfig{
			URL: v.GetString("NATS_URL"),
		},
		Admin: AdminConfig{
			User:     v.GetString("ADMIN_USER"),
			Password: v.GetString("ADMIN_PASSWORD"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	for key, val := range map[string]string{
		"DB_HOST": c.Postgres.Host,
		"DB_PORT": c.Postgres.Port,
		"DB_USER": c.Postgres.User,
		"DB_NAME": c.Postgres.DBName,
	} {
		if val == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("missing required database settings: %s", strings.Join(missing, ", "))
	}

	if c.Cart.Store != CartStoreMemory && c.Cart.Store != CartStorePostgres {
		return fmt.Errorf("invalid CART_STORE %q: expected %q or %q", c.Cart.Store, CartStoreMemory, CartStorePostgres)
	}
	if c.Postgres.MinConns > c.Postgres.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) cannot exceed DB_MAX_CONNS (%d)", c.Postgres.MinConns, c.Postgres.MaxConns)
	}
	return nil
}
