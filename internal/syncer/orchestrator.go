package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/reelsync/reelsync/internal/logging"
	"github.com/reelsync/reelsync/internal/metrics"
	"github.com/reelsync/reelsync/internal/models"
)

// DefaultConcurrency caps how many accounts sync at once when no limit is
// configured.
const DefaultConcurrency = 4

// AccountSyncer ingests one account's catalog and returns the upsert count.
type AccountSyncer interface {
	SyncAccount(ctx context.Context, accountKey string) (int, error)
}

// Orchestrator fans an account list out over a bounded worker set. One
// account failing never aborts the others; the run always produces a full
// report.
type Orchestrator struct {
	engine      AccountSyncer
	metrics     *metrics.Metrics
	logger      *logging.Logger
	concurrency int
}

// NewOrchestrator creates an orchestrator. metrics may be nil.
func NewOrchestrator(engine AccountSyncer, m *metrics.Metrics, concurrency int) *Orchestrator {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Orchestrator{
		engine:      engine,
		metrics:     m,
		logger:      logging.NewLogger(),
		concurrency: concurrency,
	}
}

// SyncMany syncs every listed account with at most the configured number in
// flight. Cancelling the context stops new accounts from starting; accounts
// already running finish on their own terms. Results keep the input order.
func (o *Orchestrator) SyncMany(ctx context.Context, accountKeys []string) *models.SyncReport {
	runID := uuid.New().String()
	ctx = logging.WithCorrelationID(ctx, runID)

	report := &models.SyncReport{
		RunID:     runID,
		Total:     len(accountKeys),
		Results:   make([]models.AccountResult, len(accountKeys)),
		StartedAt: time.Now().UTC(),
	}

	o.logger.InfoWithContext(ctx, "sync run started",
		"accounts", len(accountKeys), "concurrency", o.concurrency)

	sem := make(chan struct{}, o.concurrency)
	var wg sync.WaitGroup

	for i, key := range accountKeys {
		select {
		case <-ctx.Done():
			report.Results[i] = models.AccountResult{
				AccountKey:   key,
				Err:          ctx.Err(),
				ErrorMessage: ctx.Err().Error(),
			}
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, key string) {
			defer wg.Done()
			defer func() { <-sem }()

			report.Results[i] = o.syncOne(ctx, key)
		}(i, key)
	}
	wg.Wait()

	report.FinishedAt = time.Now().UTC()
	for _, res := range report.Results {
		report.Videos += res.VideosSynced
		if res.Succeeded() {
			report.Succeeded++
		}
	}

	o.logger.InfoWithContext(ctx, "sync run finished",
		"succeeded", report.Succeeded, "total", report.Total,
		"videos_synced", report.Videos,
		"duration_ms", report.FinishedAt.Sub(report.StartedAt).Milliseconds())
	return report
}

func (o *Orchestrator) syncOne(ctx context.Context, accountKey string) models.AccountResult {
	if o.metrics != nil {
		o.metrics.IncAccountsInFlight()
		defer o.metrics.DecAccountsInFlight()
	}

	start := time.Now()
	count, err := o.engine.SyncAccount(ctx, accountKey)
	duration := time.Since(start)

	result := models.AccountResult{
		AccountKey:   accountKey,
		VideosSynced: count,
		Err:          err,
		Duration:     duration,
	}

	if err != nil {
		result.ErrorMessage = err.Error()
		o.logger.WarnWithContext(ctx, "account sync failed",
			"account_key", accountKey, "videos_synced", count, "error", err.Error())
		if o.metrics != nil {
			o.metrics.RecordAccountSync("failure", duration.Seconds())
		}
		return result
	}

	o.logger.InfoWithContext(ctx, "account sync finished",
		"account_key", accountKey, "videos_synced", count)
	if o.metrics != nil {
		o.metrics.RecordAccountSync("success", duration.Seconds())
	}
	return result
}
