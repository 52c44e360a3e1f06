package service

import (
	"time"

	"github.com/takepoint/coordinator/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithRegisterKey sets the shared secret game servers authenticate with.
func WithRegisterKey(key string) Option {
	return func(s *Service) {
		s.registerKey = key
	}
}

// WithInstanceTTL sets how long a silent instance stays registered.
func WithInstanceTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.instanceTTL = ttl
		}
	}
}

// WithRegistrySweepInterval sets the registry sweep cadence.
func WithRegistrySweepInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.registrySweep = interval
		}
	}
}

// WithSessionTTL sets how long an idle session survives.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithSessionSweepInterval sets the session sweep cadence.
func WithSessionSweepInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.sessionSweep = interval
		}
	}
}

// WithBoundaryInterval sets how often the daily boundary is checked.
func WithBoundaryInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.boundaryInterval = interval
		}
	}
}

// WithResetUTCOffset fixes the timezone, as whole hours from UTC, in
// which the daily reset boundary is computed.
func WithResetUTCOffset(hours int) Option {
	return func(s *Service) {
		s.resetUTCOffset = hours
	}
}

// WithLeaderboardSize bounds the daily leaderboard.
func WithLeaderboardSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.leaderboardSize = size
		}
	}
}

// WithHistoryRetention sets how long raw match documents are kept.
func WithHistoryRetention(retention time.Duration) Option {
	return func(s *Service) {
		if retention > 0 {
			s.historyRetention = retention
		}
	}
}

// WithQueueSize sets the maximum size of the match-report queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of merge workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithDedupeSize sets the size of the match-id deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithGeolocator attaches the IP placement collaborator.
func WithGeolocator(g Geolocator) Option {
	return func(s *Service) {
		s.geo = g
	}
}

// WithAliasResolver attaches the DNS alias collaborator.
func WithAliasResolver(a AliasResolver) Option {
	return func(s *Service) {
		s.alias = a
	}
}

// WithClock overrides the wall clock for the in-memory components.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}
