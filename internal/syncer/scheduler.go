package syncer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/reelsync/reelsync/internal/config"
	"github.com/reelsync/reelsync/internal/errors"
	"github.com/reelsync/reelsync/internal/logging"
	"github.com/reelsync/reelsync/internal/metrics"
	"github.com/reelsync/reelsync/internal/models"
	"github.com/reelsync/reelsync/internal/store"
)

// Runner executes one orchestrated sync run.
type Runner interface {
	SyncMany(ctx context.Context, accountKeys []string) *models.SyncReport
}

// Notifier delivers a digest of a finished run.
type Notifier interface {
	SendDigest(ctx context.Context, report *models.SyncReport) error
}

// Scheduler periodically syncs every connected account. A circuit breaker
// pauses the loop when whole runs keep failing, so a platform outage does
// not turn into an hour of doomed requests.
type Scheduler struct {
	store    store.Store
	runner   Runner
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *logging.Logger

	interval time.Duration

	cb        *CircuitBreaker
	cbEnabled bool

	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler. notifier and metrics may be nil.
func NewScheduler(s store.Store, runner Runner, notifier Notifier, cfg config.SyncConfig, m *metrics.Metrics) *Scheduler {
	sched := &Scheduler{
		store:     s,
		runner:    runner,
		notifier:  notifier,
		metrics:   m,
		logger:    logging.NewLogger(),
		interval:  cfg.Scheduler.Interval,
		cbEnabled: cfg.CircuitBreaker.Enabled,
	}
	if cfg.CircuitBreaker.Enabled {
		sched.cb = NewCircuitBreaker(cfg.CircuitBreaker.FailureThreshold, cfg.CircuitBreaker.Timeout)
	}
	return sched
}

// Start begins the periodic sync loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return &errors.ErrServerStart{Addr: "sync-scheduler", Err: fmt.Errorf("scheduler already running")}
	}

	s.running = true
	s.stopCh = make(chan struct{})
	s.wg.Add(1)
	go s.loop(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	stopCh := s.stopCh
	s.mu.Unlock()

	close(stopCh)
	s.wg.Wait()
	return nil
}

// IsRunning returns true while the loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if s.cbEnabled && !s.cb.Allow() {
		s.logger.Warn("scheduled sync skipped, circuit breaker open")
		return
	}

	creds := s.store.ListCredentials()
	if len(creds) == 0 {
		return
	}
	keys := make([]string, 0, len(creds))
	for _, cred := range creds {
		keys = append(keys, cred.AccountKey)
	}

	if s.metrics != nil {
		s.metrics.RecordSyncRun("scheduled")
	}

	report := s.runner.SyncMany(ctx, keys)

	status := "ok"
	if report.Succeeded == 0 && report.Total > 0 {
		status = "failed"
	} else if report.Succeeded < report.Total {
		status = "partial"
	}
	settings := s.store.Settings()
	_ = settings.Set(store.SettingLastRunAt, report.FinishedAt.Format(time.RFC3339))
	_ = settings.Set(store.SettingLastRunStatus, status)

	if s.cbEnabled {
		if status == "failed" {
			s.cb.RecordFailure()
			if s.cb.State() == CircuitOpen {
				s.logger.Error("circuit breaker opened after repeated failed runs",
					"run_id", report.RunID)
			}
		} else {
			s.cb.RecordSuccess()
		}
	}

	if s.notifier != nil {
		if err := s.notifier.SendDigest(ctx, report); err != nil {
			s.logger.Warn("failed to send sync digest", "run_id", report.RunID, "error", err.Error())
		}
	}
}

// CircuitBreakerState reports the breaker state, CircuitClosed when the
// breaker is disabled.
func (s *Scheduler) CircuitBreakerState() CircuitState {
	if !s.cbEnabled || s.cb == nil {
		return CircuitClosed
	}
	return s.cb.State()
}

// CircuitBreaker pauses scheduled runs after consecutive whole-run failures.
type CircuitBreaker struct {
	mu               sync.RWMutex
	failures         int
	failureThreshold int
	timeout          time.Duration
	lastFailureTime  time.Time
	state            CircuitState
}

// CircuitState represents the state of the circuit breaker.
type CircuitState int

const (
	// CircuitClosed means runs are allowed
	CircuitClosed CircuitState = iota
	// CircuitOpen means runs are blocked
	CircuitOpen
	// CircuitHalfOpen means the next run probes for recovery
	CircuitHalfOpen
)

// NewCircuitBreaker creates a new circuit breaker.
func NewCircuitBreaker(failureThreshold int, timeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		timeout:          timeout,
		state:            CircuitClosed,
	}
}

// Allow checks if a run should proceed.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return true
	case CircuitOpen:
		if time.Since(cb.lastFailureTime) > cb.timeout {
			cb.state = CircuitHalfOpen
			return true
		}
		return false
	case CircuitHalfOpen:
		return true
	}
	return false
}

// RecordSuccess resets the breaker.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	cb.state = CircuitClosed
}

// RecordFailure counts a failed run and opens the breaker at the threshold.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	cb.lastFailureTime = time.Now()
	if cb.failures >= cb.failureThreshold {
		cb.state = CircuitOpen
	}
}

// State returns the current circuit state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}
