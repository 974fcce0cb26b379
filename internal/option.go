package internal

import (
	"go.uber.org/zap"

	"github.com/unixdj/dynqr/store"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	logger *zap.Logger
	store  *store.Store
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogger sets the logger instead of building one from the
// configuration.
func WithLogger(l *zap.Logger) Option {
	return func(a *application) {
		a.logger = l
	}
}

// WithStore sets the record store.  By default Run starts with an empty
// one.
func WithStore(s *store.Store) Option {
	return func(a *application) {
		a.store = s
	}
}
