package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Storage drivers.
const (
	StorageFS     = "fs"
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Storage StorageConfig     `yaml:"storage"`
	Auth    AuthConfig        `yaml:"auth"`
	AI      AIConfig          `yaml:"ai"`
	Events  EventsConfig      `yaml:"events"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.AI.Validate(); err != nil {
		return err
	}
	return c.Events.Validate()
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

// StorageConfig selects where the goal collection is kept.
//
// Path is a directory for the fs and sqlite drivers and is ignored by
// memory. Key names the collection inside the backend.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	Key    string `yaml:"key"`
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	if c.Driver == "" {
		c.Driver = StorageFS
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.In(StorageFS, StorageSQLite, StorageMemory)),
		validation.Field(&c.Path, validation.When(c.Driver != StorageMemory, validation.Required)),
		validation.Field(&c.Key, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication, for a single local user.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// AIConfig configures the step suggestion provider. An empty APIKey
// disables suggestions.
type AIConfig struct {
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// Enabled reports whether an API key is configured.
func (c *AIConfig) Enabled() bool {
	return c.APIKey != ""
}

// Validate validates the AI configuration.
func (c *AIConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Model, validation.When(c.Enabled(), validation.Required)),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

// EventsConfig tunes live updates.
type EventsConfig struct {
	Throttle time.Duration `yaml:"throttle"`
	Watch    bool          `yaml:"watch"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Throttle, validation.Min(time.Duration(0))),
	)
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
		Storage: StorageConfig{
			Driver: StorageFS,
			Path:   "./data",
			Key:    "gestorMetasApp",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		AI: AIConfig{
			Model:   "gemini-2.5-flash",
			Timeout: 30 * time.Second,
		},
		Events: EventsConfig{
			Throttle: 2 * time.Second,
			Watch:    true,
		},
	}
}
