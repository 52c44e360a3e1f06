package persistence

import "time"

// ClientOption applies a configuration option to the Client.
type ClientOption func(*Client)

// WithConnectTimeout bounds the initial connect-and-ping.
func WithConnectTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.connectTimeout = d
		}
	}
}

// storeSettings holds knobs shared by the collection stores.
type storeSettings struct {
	clock func() time.Time
}

func newStoreSettings(opts ...StoreOption) storeSettings {
	s := storeSettings{clock: time.Now}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// StoreOption applies a configuration option to a collection store.
type StoreOption func(*storeSettings)

// WithClock overrides the wall clock used for document timestamps.
func WithClock(clock func() time.Time) StoreOption {
	return func(s *storeSettings) {
		if clock != nil {
			s.clock = clock
		}
	}
}
