// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import "runtime"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// RegisterKey is the shared credential carried by instance and
	// match-report calls. Mismatches are dropped silently.
	RegisterKey string `koanf:"register_key"`

	// InstanceTTLSeconds is the registry staleness window.
	InstanceTTLSeconds int `koanf:"instance_ttl_seconds"`

	// RegistrySweepSeconds is the registry sweep interval.
	RegistrySweepSeconds int `koanf:"registry_sweep_seconds"`

	// SessionTTLSeconds is the session staleness window.
	SessionTTLSeconds int `koanf:"session_ttl_seconds"`

	// SessionSweepSeconds is the session sweep interval.
	SessionSweepSeconds int `koanf:"session_sweep_seconds"`

	// BoundaryCheckSeconds is how often the daily reset boundary is checked.
	BoundaryCheckSeconds int `koanf:"boundary_check_seconds"`

	// ResetUTCOffsetHours fixes the timezone of the daily reset so it is
	// deployment-independent.
	ResetUTCOffsetHours int `koanf:"reset_utc_offset_hours"`

	// LeaderboardSize bounds the daily top-N list.
	LeaderboardSize int `koanf:"leaderboard_size"`

	// HistoryRetentionDays controls match-history pruning at the boundary.
	HistoryRetentionDays int `koanf:"history_retention_days"`

	// ReportQueueSize bounds the in-memory match-report queue.
	ReportQueueSize int `koanf:"report_queue_size"`

	// MergeWorkerCount sets the number of merge workers.
	MergeWorkerCount int `koanf:"merge_worker_count"`

	// DedupeSize sets the size of the match-report idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MongoURI and MongoDatabase configure the persistent store.
	MongoURI      string `koanf:"mongo_uri"`
	MongoDatabase string `koanf:"mongo_database"`

	// GeoEndpoint resolves an IP to region/city attributes.
	GeoEndpoint string `koanf:"geo_endpoint"`

	// PublicIPEndpoint resolves our own address when a caller connects
	// over IPv6 and no usable IPv4 is present.
	PublicIPEndpoint string `koanf:"public_ip_endpoint"`

	// Cloudflare credentials for DNS alias resolution. All three must be
	// set for the resolver to activate.
	CloudflareZoneID   string `koanf:"cloudflare_zone_id"`
	CloudflareAPIKey   string `koanf:"cloudflare_api_key"`
	CloudflareAPIEmail string `koanf:"cloudflare_api_email"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":8080",
		InstanceTTLSeconds:   30,
		RegistrySweepSeconds: 3,
		SessionTTLSeconds:    60,
		SessionSweepSeconds:  10,
		BoundaryCheckSeconds: 5,
		ResetUTCOffsetHours:  0,
		LeaderboardSize:      5,
		HistoryRetentionDays: 14,
		ReportQueueSize:      10_000,
		MergeWorkerCount:     runtime.NumCPU() * 2,
		DedupeSize:           50_000,
		MongoURI:             "mongodb://127.0.0.1:27017",
		MongoDatabase:        "takepoint",
		GeoEndpoint:          "http://ip-api.com/json",
		PublicIPEndpoint:     "https://api.ipify.org",
	}
}
