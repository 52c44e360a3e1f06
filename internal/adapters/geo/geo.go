// Package geo resolves a game server's public IP to the region and city
// shown in the server browser.
package geo

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/takepoint/coordinator/pkg/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	defaultLookupEndpoint   = "http://ip-api.com/json"
	defaultPublicIPEndpoint = "https://api.ipify.org"
	defaultRequestTimeout   = 5 * time.Second
)

// countryRegions maps ISO country codes to browser region labels.
// Unlisted countries fall back to the raw country code.
var countryRegions = map[string]string{
	"US": "North America",
	"CA": "North America",
	"MX": "North America",
	"DE": "Europe",
	"PL": "Europe",
	"NL": "Europe",
	"SE": "Europe",
	"IN": "India",
	"JP": "Japan",
	"AU": "Australia",
}

// Location is a resolved placement for a game server.
type Location struct {
	Region string
	City   string
}

// Resolver looks up server locations over HTTP.
type Resolver struct {
	client           *http.Client
	lookupEndpoint   string
	publicIPEndpoint string

	logger logger.Logger
}

// NewResolver creates a resolver with configuration options.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		client:           &http.Client{Timeout: defaultRequestTimeout},
		lookupEndpoint:   defaultLookupEndpoint,
		publicIPEndpoint: defaultPublicIPEndpoint,
		logger:           logger.Get().Named("geo"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// lookupResponse is the subset of the ip-api.com payload we read.
type lookupResponse struct {
	Status      string `json:"status"`
	CountryCode string `json:"countryCode"`
	City        string `json:"city"`
}

// Locate resolves the given address. Addresses that cannot be looked up
// directly (private, loopback or IPv6 sources) are replaced with the
// service's own public IP first, which places locally-hosted servers at
// the deployment's location.
func (r *Resolver) Locate(ctx context.Context, addr string) (Location, error) {
	if !lookupable(addr) {
		public, err := r.publicIP(ctx)
		if err != nil {
			return Location{}, fmt.Errorf("resolve public ip: %w", err)
		}
		addr = public
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.lookupEndpoint+"/"+addr, nil)
	if err != nil {
		return Location{}, fmt.Errorf("build lookup request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("lookup %s: %w", addr, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("lookup %s: unexpected status %d", addr, resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Location{}, fmt.Errorf("decode lookup response: %w", err)
	}
	if body.Status != "success" {
		return Location{}, fmt.Errorf("lookup %s: status %q", addr, body.Status)
	}

	return Location{
		Region: regionFor(body.CountryCode),
		City:   firstWord(body.City),
	}, nil
}

// publicIP asks the echo endpoint for the service's outward-facing IPv4.
func (r *Resolver) publicIP(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.publicIPEndpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return "", err
	}

	ip := strings.TrimSpace(string(raw))
	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("echo endpoint returned %q", ip)
	}
	return ip, nil
}

// lookupable reports whether addr is a public IPv4 address the lookup
// service can place.
func lookupable(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil || ip.To4() == nil {
		return false
	}
	return !ip.IsLoopback() && !ip.IsPrivate() && !ip.IsUnspecified()
}

func regionFor(countryCode string) string {
	if region, ok := countryRegions[countryCode]; ok {
		return region
	}
	return countryCode
}

// firstWord keeps only the first word of a city name.
func firstWord(city string) string {
	if i := strings.IndexByte(city, ' '); i > 0 {
		return city[:i]
	}
	return city
}
