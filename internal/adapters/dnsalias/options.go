package dnsalias

import "net/http"

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		if client != nil {
			r.client = client
		}
	}
}

// WithAPIBase overrides the DNS provider API base URL.
func WithAPIBase(base string) Option {
	return func(r *Resolver) {
		if base != "" {
			r.apiBase = base
		}
	}
}
