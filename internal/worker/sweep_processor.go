package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/milkway/milkway/internal/domain/model"
)

// FulfillmentFacade exposes the subset of application functionality required by the worker.
type FulfillmentFacade interface {
	SubscriptionsForSweep(ctx context.Context, sweptBefore time.Time, limit int) ([]model.Subscription, error)
	SweepSubscription(ctx context.Context, sub model.Subscription, from, to time.Time) (int, error)
}

// SweepProcessor periodically marks elapsed unreconciled occurrences as
// missed. Each tick claims a batch of subscriptions and sweeps them over
// the lookback window concurrently. Today's occurrences are never swept;
// the window always ends at yesterday.
type SweepProcessor struct {
	facade       FulfillmentFacade
	pollInterval time.Duration
	lookbackDays int
	batchSize    int
	workers      int
	logger       *slog.Logger
	now          func() time.Time

	jobs   chan model.Subscription
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewSweepProcessor constructs the sweep worker pool.
func NewSweepProcessor(facade FulfillmentFacade, pollInterval time.Duration, lookbackDays, batchSize, workers int, logger *slog.Logger) *SweepProcessor {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	if lookbackDays <= 0 {
		lookbackDays = 1
	}
	return &SweepProcessor{
		facade:       facade,
		pollInterval: pollInterval,
		lookbackDays: lookbackDays,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		now:          time.Now,
		jobs:         make(chan model.Subscription, batchSize*workers),
	}
}

// Start launches background processing.
func (p *SweepProcessor) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(runCtx)
	}

	p.wg.Add(1)
	go p.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (p *SweepProcessor) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *SweepProcessor) dispatch(ctx context.Context) {
	defer p.wg.Done()
	defer close(p.jobs)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetchAndDispatch(ctx)
		}
	}
}

func (p *SweepProcessor) fetchAndDispatch(ctx context.Context) {
	cutoff := p.now().Add(-p.pollInterval)
	subs, err := p.facade.SubscriptionsForSweep(ctx, cutoff, p.batchSize)
	if err != nil {
		p.logger.Error("fetch subscriptions for sweep failed", slog.String("error", err.Error()))
		return
	}
	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return
		case p.jobs <- sub:
		}
	}
}

func (p *SweepProcessor) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case sub, ok := <-p.jobs:
			if !ok {
				return
			}
			p.handleSubscription(ctx, sub)
		}
	}
}

func (p *SweepProcessor) handleSubscription(ctx context.Context, sub model.Subscription) {
	today := model.Day(p.now())
	from := today.AddDate(0, 0, -p.lookbackDays)
	to := today.AddDate(0, 0, -1)

	marked, err := p.facade.SweepSubscription(ctx, sub, from, to)
	if err != nil {
		p.logger.Error("sweep failed",
			slog.Int64("subscription", sub.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	if marked > 0 {
		p.logger.Info("occurrences marked missed",
			slog.Int64("subscription", sub.ID),
			slog.Int("count", marked),
		)
	}
}
