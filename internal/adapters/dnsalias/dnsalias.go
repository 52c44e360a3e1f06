// Package dnsalias maintains DNS A-record aliases for registered game
// servers, so browsers reach them by hostname instead of raw IP.
package dnsalias

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/takepoint/coordinator/pkg/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	defaultAPIBase        = "https://api.cloudflare.com/client/v4"
	defaultRequestTimeout = 10 * time.Second
)

// Resolver ensures an A record exists for a server IP and returns its
// hostname. Without credentials it is inactive and passes addresses
// through unchanged.
type Resolver struct {
	client   *http.Client
	apiBase  string
	zoneID   string
	apiKey   string
	apiEmail string

	logger logger.Logger
}

// NewResolver creates a resolver with configuration options.
func NewResolver(zoneID, apiKey, apiEmail string, opts ...Option) *Resolver {
	r := &Resolver{
		client:   &http.Client{Timeout: defaultRequestTimeout},
		apiBase:  defaultAPIBase,
		zoneID:   zoneID,
		apiKey:   apiKey,
		apiEmail: apiEmail,
		logger:   logger.Get().Named("dnsalias"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Active reports whether the resolver has credentials to manage records.
func (r *Resolver) Active() bool {
	return r.zoneID != "" && r.apiKey != "" && r.apiEmail != ""
}

type dnsRecord struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
	TTL     int    `json:"ttl"`
}

type apiResponse struct {
	Success bool        `json:"success"`
	Result  []dnsRecord `json:"result"`
}

type createResponse struct {
	Success bool      `json:"success"`
	Result  dnsRecord `json:"result"`
}

// Alias returns a hostname for the given IPv4 address, creating the A
// record on first sight. Inactive resolvers return the address as is.
func (r *Resolver) Alias(ctx context.Context, ip string) (string, error) {
	if !r.Active() {
		return ip, nil
	}

	existing, err := r.findRecord(ctx, ip)
	if err != nil {
		return "", err
	}
	if existing != "" {
		return existing, nil
	}

	name, err := r.createRecord(ctx, ip)
	if err != nil {
		return "", err
	}

	r.logger.Info(ctx, "created dns alias",
		logger.String("ip", ip),
		logger.String("name", name),
	)
	return name, nil
}

func (r *Resolver) findRecord(ctx context.Context, ip string) (string, error) {
	url := fmt.Sprintf("%s/zones/%s/dns_records?type=A&content=%s", r.apiBase, r.zoneID, ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build dns list request: %w", err)
	}
	r.authorize(req)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("list dns records: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode dns list response: %w", err)
	}
	if !body.Success {
		return "", fmt.Errorf("dns list failed for %s", ip)
	}

	if len(body.Result) == 0 {
		return "", nil
	}
	return body.Result[0].Name, nil
}

func (r *Resolver) createRecord(ctx context.Context, ip string) (string, error) {
	record := dnsRecord{
		Type:    "A",
		Name:    strings.ReplaceAll(ip, ".", "-"),
		Content: ip,
		TTL:     1, // automatic
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("encode dns record: %w", err)
	}

	url := fmt.Sprintf("%s/zones/%s/dns_records", r.apiBase, r.zoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build dns create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	r.authorize(req)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("create dns record: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	var body createResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode dns create response: %w", err)
	}
	if !body.Success {
		return "", fmt.Errorf("dns create failed for %s", ip)
	}
	return body.Result.Name, nil
}

func (r *Resolver) authorize(req *http.Request) {
	req.Header.Set("X-Auth-Email", r.apiEmail)
	req.Header.Set("X-Auth-Key", r.apiKey)
}
