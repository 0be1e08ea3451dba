package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/learnings/internal/store"
	"github.com/starford/learnings/internal/web"
)

// Config represents the application configuration.
type Config struct {
	App   ApplicationConfig `yaml:"app"`
	Store StoreConfig       `yaml:"store"`
	Web   WebConfig         `yaml:"web"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	return c.Web.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// StoreConfig selects the database backend.
//
// Driver is "sqlite" (default) or "postgres". DSN is a file path for
// SQLite and a connection URL for PostgreSQL.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Validate validates the store configuration.
func (c *StoreConfig) Validate() error {
	if c.Driver == "" {
		c.Driver = string(store.DialectSQLite)
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required,
			validation.In(string(store.DialectSQLite), string(store.DialectPostgres))),
		validation.Field(&c.DSN, validation.Required),
	)
}

// Options converts the config into store.Options.
func (c *StoreConfig) Options() store.Options {
	return store.Options{Dialect: store.Dialect(c.Driver), DSN: c.DSN}
}

// WebConfig holds presentation settings for the browser UI.
type WebConfig struct {
	Title    string `yaml:"title"`
	Theme    string `yaml:"theme"`
	Timezone string `yaml:"timezone"`
}

// Validate validates the web configuration.
func (c *WebConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Theme, validation.By(func(any) error {
			_, err := web.ParseTheme(c.Theme)
			return err
		})),
		validation.Field(&c.Timezone, validation.By(func(any) error {
			_, err := c.Location()
			return err
		})),
	)
}

// Location resolves Timezone. Empty means the host's local zone.
func (c *WebConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Store: StoreConfig{
			Driver: string(store.DialectSQLite),
			DSN:    "./learnings.db",
		},
		Web: WebConfig{
			Title: "What Did You Learn?",
			Theme: string(web.ThemeSystem),
		},
	}
}
