package worker

import (
	"time"

	"github.com/takepoint/coordinator/pkg/logger"
)

// Option applies a configuration option to a Merger.
type Option func(*Merger)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(m *Merger) {
		if name != "" {
			m.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(m *Merger) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock overrides the wall clock used to timestamp merges.
func WithClock(clock func() time.Time) Option {
	return func(m *Merger) {
		if clock != nil {
			m.clock = clock
		}
	}
}
