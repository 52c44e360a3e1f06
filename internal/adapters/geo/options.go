package geo

import "net/http"

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithHTTPClient sets the HTTP client used for lookups.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		if client != nil {
			r.client = client
		}
	}
}

// WithLookupEndpoint overrides the IP geolocation endpoint.
func WithLookupEndpoint(endpoint string) Option {
	return func(r *Resolver) {
		if endpoint != "" {
			r.lookupEndpoint = endpoint
		}
	}
}

// WithPublicIPEndpoint overrides the public-IP echo endpoint.
func WithPublicIPEndpoint(endpoint string) Option {
	return func(r *Resolver) {
		if endpoint != "" {
			r.publicIPEndpoint = endpoint
		}
	}
}
