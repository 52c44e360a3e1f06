// Package worker defines the merge workers that fold queued match
// reports into persistent player profiles.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/takepoint/coordinator/internal/domain/badge"
	"github.com/takepoint/coordinator/internal/domain/model"
	"github.com/takepoint/coordinator/internal/domain/stats"
	"github.com/takepoint/coordinator/pkg/logger"
	"github.com/takepoint/coordinator/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Report abstracts what workers read off the queue.
type Report = model.MatchReport

// ProfileStore loads and persists cumulative player profiles.
type ProfileStore interface {
	LoadProfile(ctx context.Context, account string) (*stats.Profile, error)
	SaveProfile(ctx context.Context, account string, p *stats.Profile) error
	RecordMatchHistory(ctx context.Context, account string, d *stats.Delta, now int64) error
}

// Scoreboard receives per-match scores for daily ranking.
type Scoreboard interface {
	Report(account string, score int) bool
}

// Queue defines how workers receive reports.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Report
}

// Worker processes match reports until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// Merger implements Worker. Each dequeued report is merged under the
// account's lock so concurrent reports for one player apply one at a
// time, in dequeue order.
type Merger struct {
	queue    Queue
	profiles ProfileStore
	board    Scoreboard
	facts    stats.FactSink
	locks    *AccountLocks
	clock    func() time.Time
	name     string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewMerger creates a new merge worker with configuration options.
func NewMerger(queue Queue, profiles ProfileStore, board Scoreboard, facts stats.FactSink, locks *AccountLocks, opts ...Option) *Merger {
	m := &Merger{
		queue:    queue,
		profiles: profiles,
		board:    board,
		facts:    facts,
		locks:    locks,
		clock:    time.Now,
		name:     "merger",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("merger"),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.name != "merger" {
		m.logger = m.logger.Named(m.name)
	}

	return m
}

// Run starts the worker loop.
func (m *Merger) Run(ctx context.Context) {
	defer close(m.done)

	reports := m.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.shutdown:
			return
		case r, ok := <-reports:
			if !ok {
				return
			}
			if err := m.processReport(ctx, r); err != nil {
				m.logger.Error(ctx, "error processing match report", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (m *Merger) Shutdown(ctx context.Context) error {
	close(m.shutdown)

	select {
	case <-m.done:
		return nil
	case <-ctx.Done():
		m.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processReport folds a single report into its account's profile.
func (m *Merger) processReport(ctx context.Context, r Report) error {
	start := time.Now()
	defer func() {
		metrics.RecordMergeLatency(float64(time.Since(start).Milliseconds()))
	}()

	unlock := m.locks.Lock(r.Account)
	defer unlock()

	p, err := m.profiles.LoadProfile(ctx, r.Account)
	if err != nil {
		metrics.RecordMergeError()
		m.logger.Error(ctx, "profile load failed, report skipped",
			logger.String("account", r.Account),
			logger.String("matchID", r.ID()),
			logger.Error(err),
		)
		return fmt.Errorf("load profile for %s: %w", r.Account, err)
	}

	now := m.clock().UnixMilli()
	stats.Merge(p, &r.Delta, now, m.facts)
	badge.GrantEligible(p, now)

	if err := m.profiles.SaveProfile(ctx, r.Account, p); err != nil {
		metrics.RecordMergeError()
		m.logger.Error(ctx, "profile save failed",
			logger.String("account", r.Account),
			logger.String("matchID", r.ID()),
			logger.Error(err),
		)
		return fmt.Errorf("save profile for %s: %w", r.Account, err)
	}

	// History is advisory; a write failure must not fail the merge.
	if err := m.profiles.RecordMatchHistory(ctx, r.Account, &r.Delta, now); err != nil {
		m.logger.Warn(ctx, "match history write failed",
			logger.String("account", r.Account),
			logger.String("matchID", r.ID()),
			logger.Error(err),
		)
	}

	m.board.Report(r.Account, r.Delta.Score)

	return nil
}

// Pool manages multiple merge workers sharing one account lock set.
type Pool struct {
	workers []*Merger
	queue   Queue

	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, queue Queue, profiles ProfileStore, board Scoreboard, facts stats.FactSink, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers: make([]*Merger, workerCount),
		queue:   queue,
		logger:  logger.Get().Named("merge-pool"),
	}

	locks := NewAccountLocks()
	for i := 0; i < workerCount; i++ {
		workerOpts := append([]Option{WithName("merger-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewMerger(queue, profiles, board, facts, locks, workerOpts...)
	}

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	return nil
}
