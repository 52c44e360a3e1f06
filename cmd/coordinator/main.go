package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/takepoint/coordinator/internal/adapters/dnsalias"
	"github.com/takepoint/coordinator/internal/adapters/geo"
	"github.com/takepoint/coordinator/internal/adapters/http/api"
	"github.com/takepoint/coordinator/internal/adapters/persistence"
	app "github.com/takepoint/coordinator/internal/app"
	"github.com/takepoint/coordinator/internal/config"
	"github.com/takepoint/coordinator/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// The default Go runtime collectors add noise next to the domain
	// metrics; drop them from the shared registry.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logger: " + err.Error() + "\n")
		}
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if cfg.RegisterKey == "" {
		log.Warn(ctx, "register_key is empty; instance and match traffic will be dropped")
	}

	// Durable stores.
	mongo, err := persistence.NewClient(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Error(ctx, "mongodb connection failed", logger.Error(err))
		return
	}
	defer func() {
		if err := mongo.Disconnect(context.Background()); err != nil {
			log.Error(context.Background(), "mongodb disconnect failed", logger.Error(err))
		}
	}()

	players := persistence.NewPlayerStore(mongo)
	sessions := persistence.NewSessionStore(mongo)

	// Placement collaborators.
	geolocator := geo.NewResolver(
		geo.WithLookupEndpoint(cfg.GeoEndpoint),
		geo.WithPublicIPEndpoint(cfg.PublicIPEndpoint),
	)
	alias := dnsalias.NewResolver(cfg.CloudflareZoneID, cfg.CloudflareAPIKey, cfg.CloudflareAPIEmail)
	if !alias.Active() {
		log.Info(ctx, "dns alias resolver inactive; serving instances by raw IP")
	}

	svc := app.New(players, players, sessions,
		app.WithLogger(log.Named("service")),
		app.WithRegisterKey(cfg.RegisterKey),
		app.WithInstanceTTL(time.Duration(cfg.InstanceTTLSeconds)*time.Second),
		app.WithRegistrySweepInterval(time.Duration(cfg.RegistrySweepSeconds)*time.Second),
		app.WithSessionTTL(time.Duration(cfg.SessionTTLSeconds)*time.Second),
		app.WithSessionSweepInterval(time.Duration(cfg.SessionSweepSeconds)*time.Second),
		app.WithBoundaryInterval(time.Duration(cfg.BoundaryCheckSeconds)*time.Second),
		app.WithResetUTCOffset(cfg.ResetUTCOffsetHours),
		app.WithLeaderboardSize(cfg.LeaderboardSize),
		app.WithHistoryRetention(time.Duration(cfg.HistoryRetentionDays)*24*time.Hour),
		app.WithQueueSize(cfg.ReportQueueSize),
		app.WithWorkerCount(cfg.MergeWorkerCount),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithGeolocator(geolocator),
		app.WithAliasResolver(alias),
	)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewServer(svc).Router(),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}
