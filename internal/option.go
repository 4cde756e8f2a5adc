package internal

import "github.com/starford/metas/internal/suggest"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	version   string
	suggester suggest.Provider
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithVersion sets the version reported by the MCP server.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}

// WithSuggester overrides the AI provider built from config.
func WithSuggester(p suggest.Provider) Option {
	return func(a *application) {
		a.suggester = p
	}
}
