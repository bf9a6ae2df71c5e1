package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"jobbots/common/cache"
	"jobbots/common/telemetry"
	"jobbots/services/processing/internal/config"
	"jobbots/services/processing/internal/models"
	"jobbots/services/processing/internal/parser"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// maxPendingBatches bounds how many batches a failing store can hold back.
const maxPendingBatches = 10

// JobProcessor parses scraped jobs and writes them to the store in batches.
// Listings whose content is unchanged since the last write are skipped.
// A batch the store rejects goes back to the front of the queue.
type JobProcessor struct {
	logger *zap.Logger
	store  Store
	seen   cache.Cache
	tracer trace.Tracer
	config *config.Config
	now    func() time.Time

	mu      sync.Mutex
	pending []models.JobListing
}

func NewJobProcessor(logger *zap.Logger, store Store, seen cache.Cache, config *config.Config) *JobProcessor {
	return &JobProcessor{
		logger: logger,
		store:  store,
		seen:   seen,
		tracer: telemetry.GetTracer("jobbots/processing/processor"),
		config: config,
		now:    time.Now,
	}
}

func (p *JobProcessor) ProcessJob(ctx context.Context, rawData []byte) error {
	ctx, span := p.tracer.Start(ctx, "ProcessJob")
	defer span.End()

	listing, err := parser.ParseJob(rawData, p.now())
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("parse job: %w", err)
	}
	span.SetAttributes(
		telemetry.String("job.source", listing.Source),
		telemetry.String("job.id", listing.JobID),
	)

	if p.unchanged(ctx, listing) {
		p.logger.Debug("skipping unchanged job",
			zap.String("job_id", listing.JobID),
			zap.String("source", listing.Source))
		return nil
	}

	p.mu.Lock()
	p.pending = append(p.pending, *listing)
	var batch []models.JobListing
	if len(p.pending) >= p.config.BatchSize {
		batch = p.pending
		p.pending = nil
	}
	p.mu.Unlock()

	if batch == nil {
		return nil
	}

	// the batch holds other messages' listings, so it must not die with
	// this message's deadline
	writeCtx, cancel := p.writeContext(ctx)
	defer cancel()
	return p.write(writeCtx, batch)
}

func (p *JobProcessor) writeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithoutCancel(ctx)
	if p.config.ProcessingTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.config.ProcessingTimeout)
}

func (p *JobProcessor) ProcessAnalysis(ctx context.Context, rawData []byte) error {
	ctx, span := p.tracer.Start(ctx, "ProcessAnalysis")
	defer span.End()

	analysis, err := parser.ParseAnalysis(rawData, p.now())
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("parse analysis: %w", err)
	}

	err = p.retry(ctx, func() error {
		return p.store.InsertAnalysis(ctx, analysis)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("store analysis: %w", err)
	}
	return nil
}

// Flush writes whatever is pending.
func (p *JobProcessor) Flush(ctx context.Context) error {
	p.mu.Lock()
	batch := p.pending
	p.pending = nil
	p.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	return p.write(ctx, batch)
}

// Run flushes every FlushInterval until ctx is done.
func (p *JobProcessor) Run(ctx context.Context) {
	ticker := time.NewTicker(p.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.Flush(ctx); err != nil {
				p.logger.Error("periodic flush failed", zap.Error(err))
			}
		}
	}
}

func (p *JobProcessor) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

func (p *JobProcessor) write(ctx context.Context, batch []models.JobListing) error {
	ctx, span := p.tracer.Start(ctx, "WriteListings")
	defer span.End()
	span.SetAttributes(telemetry.Int("batch.size", len(batch)))

	err := p.retry(ctx, func() error {
		return p.store.InsertListings(ctx, batch)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		p.logger.Error("failed to store job listings",
			zap.Int("count", len(batch)),
			zap.Error(err))
		p.requeue(batch)
		return fmt.Errorf("store job listings: %w", err)
	}

	p.markSeen(ctx, batch)
	p.logger.Info("stored job listings", zap.Int("count", len(batch)))
	return nil
}

// requeue puts a failed batch back ahead of newer listings, dropping the
// oldest once more than maxPendingBatches batches are waiting.
func (p *JobProcessor) requeue(batch []models.JobListing) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pending := make([]models.JobListing, 0, len(batch)+len(p.pending))
	pending = append(pending, batch...)
	pending = append(pending, p.pending...)

	limit := p.config.BatchSize * maxPendingBatches
	if dropped := len(pending) - limit; dropped > 0 {
		p.logger.Warn("dropping oldest pending job listings",
			zap.Int("dropped", dropped),
			zap.Int("limit", limit))
		pending = pending[dropped:]
	}
	p.pending = pending
}

func (p *JobProcessor) retry(ctx context.Context, op func() error) error {
	attempts := p.config.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.config.RetryDelay):
			}
		}
		if err = op(); err == nil {
			return nil
		}
		p.logger.Warn("store attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
	return err
}

func seenKey(l *models.JobListing) string {
	return cache.Key("processed", l.Source, l.JobID)
}

func (p *JobProcessor) unchanged(ctx context.Context, l *models.JobListing) bool {
	if p.seen == nil {
		return false
	}
	var fingerprint string
	if err := p.seen.Get(ctx, seenKey(l), &fingerprint); err != nil {
		return false
	}
	return fingerprint == parser.Fingerprint(l)
}

func (p *JobProcessor) markSeen(ctx context.Context, batch []models.JobListing) {
	if p.seen == nil {
		return
	}
	for i := range batch {
		l := &batch[i]
		if err := p.seen.Set(ctx, seenKey(l), parser.Fingerprint(l), p.config.CacheTTL); err != nil {
			p.logger.Warn("failed to remember processed job",
				zap.String("job_id", l.JobID),
				zap.Error(err))
		}
	}
}
