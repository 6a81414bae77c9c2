package history

import "github.com/rs/zerolog"

type config struct {
	logger zerolog.Logger
}

// Option configures a History.
type Option func(*config)

// WithLogger sets the logger used for transaction lifecycle events.
// The default logger discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}
