// Package service provides the coordination facade that implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	reportqueue "github.com/takepoint/coordinator/internal/adapters/mq/queue"
	workerpool "github.com/takepoint/coordinator/internal/adapters/mq/worker"
	"github.com/takepoint/coordinator/internal/domain/dedupe"
	"github.com/takepoint/coordinator/internal/domain/funfact"
	"github.com/takepoint/coordinator/internal/domain/leaderboard"
	"github.com/takepoint/coordinator/internal/domain/model"
	"github.com/takepoint/coordinator/internal/domain/registry"
	"github.com/takepoint/coordinator/internal/domain/session"
	"github.com/takepoint/coordinator/internal/domain/stats"
	"github.com/takepoint/coordinator/pkg/logger"
	"github.com/takepoint/coordinator/pkg/metrics"
)

// GameState is the public payload served to browsers on the title
// screen: one fun fact and the current daily leaderboard.
type GameState struct {
	FactName  string              `json:"statName"`
	FactValue string              `json:"statValue"`
	Entries   []leaderboard.Entry `json:"leaderboard"`
}

// Service owns the ephemeral coordination state and the merge pipeline.
type Service struct {
	mu sync.RWMutex

	// Core components
	registry *registry.Registry
	sessions *session.Coordinator
	board    *leaderboard.Board
	facts    *funfact.Set
	deduper  dedupe.Deduper
	queue    reportqueue.Queue
	pool     *workerpool.Pool

	// Collaborators
	profiles     ProfileStore
	accounts     AccountStore
	sessionStore SessionStore
	geo          Geolocator
	alias        AliasResolver

	// Configuration
	registerKey      string
	instanceTTL      time.Duration
	registrySweep    time.Duration
	sessionTTL       time.Duration
	sessionSweep     time.Duration
	boundaryInterval time.Duration
	resetUTCOffset   int
	leaderboardSize  int
	historyRetention time.Duration
	queueSize        int
	workerCount      int
	dedupeSize       int
	clock            func() time.Time

	// State
	started bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	// Logging
	logger logger.Logger
}

// New constructs a Service over the given collaborators with default
// configuration. Geolocation and DNS aliasing are optional and attached
// via options.
func New(profiles ProfileStore, accounts AccountStore, sessionStore SessionStore, opts ...Option) *Service {
	s := &Service{
		profiles:         profiles,
		accounts:         accounts,
		sessionStore:     sessionStore,
		instanceTTL:      30 * time.Second,
		registrySweep:    3 * time.Second,
		sessionTTL:       60 * time.Second,
		sessionSweep:     10 * time.Second,
		boundaryInterval: 5 * time.Second,
		leaderboardSize:  5,
		historyRetention: 14 * 24 * time.Hour,
		queueSize:        10000,
		workerCount:      0, // pool picks its own default
		dedupeSize:       50000,
		clock:            time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start builds the in-memory components and launches the sweep loops
// and merge workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting coordination service...")

	s.registry = registry.New(
		registry.WithTTL(s.instanceTTL),
		registry.WithClock(s.clock),
	)
	s.sessions = session.New(
		session.WithTTL(s.sessionTTL),
		session.WithClock(s.clock),
	)
	s.board = leaderboard.New(
		leaderboard.WithSize(s.leaderboardSize),
		leaderboard.WithUTCOffset(s.resetUTCOffset),
		leaderboard.WithClock(s.clock),
	)
	s.facts = funfact.DefaultSet()
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.queue = reportqueue.NewInMemoryQueue(
		reportqueue.WithCapacity(s.queueSize),
	)

	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.profiles, s.board, s.facts,
		workerpool.WithClock(s.clock),
	)
	s.pool.Start(ctx)

	// A fresh channel each time so a restarted service is not stopped
	// by the previous run's close.
	s.stopCh = make(chan struct{})

	s.wg.Add(3)
	go s.sweepRegistry()
	go s.sweepSessions()
	go s.watchBoundary(ctx)

	s.started = true
	s.logger.Info(ctx, "coordination service started",
		logger.Duration("instanceTTL", s.instanceTTL),
		logger.Duration("sessionTTL", s.sessionTTL),
		logger.Int("leaderboardSize", s.leaderboardSize),
		logger.Int("queueSize", s.queueSize),
	)

	return nil
}

// Stop halts the sweep loops and drains the merge pipeline.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping coordination service...")

	close(s.stopCh)
	s.wg.Wait()

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Error(ctx, "worker pool shutdown", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "coordination service stopped")
}

func (s *Service) sweepRegistry() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.registrySweep)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			if evicted := s.registry.Sweep(); len(evicted) > 0 {
				s.logger.Info(context.Background(), "evicted silent instances",
					logger.Any("instances", evicted),
				)
			}
		}
	}
}

func (s *Service) sweepSessions() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.sessionSweep)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			if evicted := s.sessions.Sweep(); len(evicted) > 0 {
				s.logger.Info(context.Background(), "expired idle sessions",
					logger.Any("accounts", evicted),
				)
			}
		}
	}
}

// watchBoundary polls for the daily boundary. Crossing it clears the
// board and the fun-fact counters and prunes old match history, each
// exactly once per crossing.
func (s *Service) watchBoundary(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.boundaryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			if !s.board.ResetIfBoundaryCrossed() {
				continue
			}
			s.facts.ResetAll()
			s.logger.Info(ctx, "daily boundary crossed, leaderboard and counters reset")

			deleted, err := s.profiles.PruneMatchHistory(ctx, s.historyRetention)
			if err != nil {
				s.logger.Error(ctx, "match history prune failed", logger.Error(err))
				continue
			}
			s.logger.Info(ctx, "match history pruned", logger.Int64("deleted", deleted))
		}
	}
}

// authorize checks the shared register key carried by game servers.
func (s *Service) authorize(ctx context.Context, key, caller string) error {
	if s.registerKey == "" || key != s.registerKey {
		metrics.RecordAuthDrop()
		s.logger.Warn(ctx, "register key mismatch", logger.String("caller", caller))
		return ErrUnauthorized
	}
	return nil
}

// RegisterOrHeartbeatInstance records a game server or refreshes its
// heartbeat. On an instance's first registration without the override
// flag, region, city and URL are resolved from the caller's source IP.
func (s *Service) RegisterOrHeartbeatInstance(ctx context.Context, id string, attrs registry.Attributes, authKey string, override bool, sourceIP string) error {
	if err := s.authorize(ctx, authKey, sourceIP); err != nil {
		return err
	}
	if id == "" {
		metrics.RecordAuthDrop()
		s.logger.Warn(ctx, "instance registration without id", logger.String("caller", sourceIP))
		return ErrUnauthorized
	}

	if !s.registry.Has(id) && !override {
		s.placeInstance(ctx, &attrs, sourceIP)
	}

	s.registry.Register(id, attrs)
	return nil
}

// placeInstance fills region, city and URL from the caller's source IP.
// Lookup failures leave the supplied attributes untouched.
func (s *Service) placeInstance(ctx context.Context, attrs *registry.Attributes, sourceIP string) {
	if s.geo != nil {
		loc, err := s.geo.Locate(ctx, sourceIP)
		if err != nil {
			s.logger.Warn(ctx, "geolocation failed",
				logger.String("ip", sourceIP),
				logger.Error(err),
			)
		} else {
			attrs.Region = loc.Region
			attrs.City = loc.City
		}
	}

	if s.alias != nil {
		host, err := s.alias.Alias(ctx, sourceIP)
		if err != nil {
			s.logger.Warn(ctx, "dns alias failed",
				logger.String("ip", sourceIP),
				logger.Error(err),
			)
			return
		}
		attrs.URL = host
	}
}

// ListInstances returns the live instances' public attribute bags.
func (s *Service) ListInstances() []registry.Attributes {
	return slices.Collect(s.registry.List())
}

// ReportMatch validates, dedupes and enqueues one finished-match delta.
// Redelivered match ids are absorbed silently.
func (s *Service) ReportMatch(ctx context.Context, account string, delta stats.Delta, authKey string) error {
	if err := s.authorize(ctx, authKey, account); err != nil {
		return err
	}

	if delta.MatchID == "" {
		delta.MatchID = uuid.NewString()
	}

	if s.deduper.SeenAndRecord(ctx, delta.MatchID) {
		metrics.RecordMatchDuplicate()
		s.logger.Debug(ctx, "duplicate match report dropped",
			logger.String("matchID", delta.MatchID),
		)
		return nil
	}

	report := model.MatchReport{Account: account, Delta: delta}
	if !s.queue.Enqueue(ctx, report) {
		s.deduper.Unrecord(ctx, delta.MatchID)
		return fmt.Errorf("enqueue match %s: %w", delta.MatchID, ErrQueueFull)
	}

	metrics.RecordMatchReport()
	return nil
}

// RegisterAccount creates a new account with a blank profile.
func (s *Service) RegisterAccount(ctx context.Context, username, email, password string) error {
	return s.accounts.Register(ctx, username, email, password)
}

// Login authenticates by username or email and opens the account's
// singleton session. The returned account is the canonical username.
func (s *Service) Login(ctx context.Context, usernameOrEmail, password string) (string, string, error) {
	account, err := s.accounts.Authenticate(ctx, usernameOrEmail, password)
	if err != nil {
		return "", "", err
	}

	token, err := s.CreateSession(ctx, account)
	if err != nil {
		return "", "", err
	}
	return account, token, nil
}

// CreateSession opens a session for the account and persists the token
// for cookie resume. The durable write is one-shot: on failure the
// in-memory session is rolled back and the login fails.
func (s *Service) CreateSession(ctx context.Context, account string) (string, error) {
	token, err := s.sessions.Create(account)
	if err != nil {
		return "", err
	}

	if err := s.sessionStore.Put(ctx, account, token); err != nil {
		s.sessions.Logout(account)
		return "", fmt.Errorf("persist session for %s: %w", account, err)
	}

	return token, nil
}

// ResumeSession reinstates a session from a durable cookie token.
func (s *Service) ResumeSession(ctx context.Context, token string) (string, error) {
	account, err := s.sessionStore.Resume(ctx, token)
	if err != nil {
		return "", err
	}

	s.sessions.Activate(account, token)
	return account, nil
}

// HeartbeatSessions refreshes the listed accounts' sessions. Game
// servers relay the names of currently-connected players in batches,
// authenticated with the shared register key.
func (s *Service) HeartbeatSessions(ctx context.Context, accounts []string, authKey string) (int, error) {
	if err := s.authorize(ctx, authKey, "session-heartbeat"); err != nil {
		return 0, err
	}
	return s.sessions.Heartbeat(accounts), nil
}

// EndSession logs the account out everywhere.
func (s *Service) EndSession(ctx context.Context, account string) bool {
	removed := s.sessions.Logout(account)

	if err := s.sessionStore.Delete(ctx, account); err != nil {
		s.logger.Warn(ctx, "durable session delete failed",
			logger.String("account", account),
			logger.Error(err),
		)
	}

	return removed
}

// SessionActive reports whether the account currently holds a session.
func (s *Service) SessionActive(account string) bool {
	return s.sessions.IsActive(account)
}

// GameState assembles the public title-screen payload.
func (s *Service) GameState() GameState {
	name, value := s.facts.Pick()
	return GameState{
		FactName:  name,
		FactValue: value,
		Entries:   s.board.Snapshot(),
	}
}

// QueueLen reports the current merge backlog, for monitoring.
func (s *Service) QueueLen(ctx context.Context) int {
	return s.queue.Len(ctx)
}
