// Package bots scrapes job postings from recruitment sites through a
// page.Page. Each bot owns its page and serializes calls on it.
package bots

import (
	"context"
	"fmt"
	"sync"
	"time"

	"jobbots/common/errors"
	"jobbots/common/telemetry"
	"jobbots/services/ingestion/internal/models"
	"jobbots/services/ingestion/internal/page"

	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("jobbots/ingestion/bots")

const DefaultWaitTimeout = 30 * time.Second

type Bot interface {
	// Name is the platform key the bot is registered under.
	Name() string
	SearchJobs(ctx context.Context, opts models.SearchOptions) ([]models.JobInfo, error)
	GetJobDetail(ctx context.Context, jobID string) (*models.JobInfo, error)
	GetCompanyJobs(ctx context.Context, opts models.CompanyJobsOptions) ([]models.JobInfo, error)
	Close() error
}

type Options struct {
	// BaseURL overrides the site root, mostly for tests against a mirror.
	BaseURL string
	// WaitTimeout bounds each wait for a page's content selector.
	WaitTimeout time.Duration
	// Now stamps UpdateTime; defaults to time.Now.
	Now func() time.Time
}

func (o Options) withDefaults(baseURL string) Options {
	if o.BaseURL == "" {
		o.BaseURL = baseURL
	}
	if o.WaitTimeout == 0 {
		o.WaitTimeout = DefaultWaitTimeout
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// baseBot holds what both sites share: the page, its lock and the list
// extraction loop.
type baseBot struct {
	mu     sync.Mutex
	name   string
	page   page.Page
	opts   Options
	vocab  siteVocabulary
	logger *zap.Logger
}

func newBaseBot(name string, p page.Page, opts Options, vocab siteVocabulary, logger *zap.Logger) *baseBot {
	return &baseBot{
		name:   name,
		page:   p,
		opts:   opts,
		vocab:  vocab,
		logger: logger.Named(name),
	}
}

func (b *baseBot) Name() string {
	return b.name
}

func (b *baseBot) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.page.Close(); err != nil {
		return fmt.Errorf("closing %s page: %w", b.name, err)
	}
	return nil
}

// open navigates to url and waits for selector to appear.
func (b *baseBot) open(ctx context.Context, url, selector, what string) error {
	b.logger.Info("loading page", zap.String("url", url))
	if err := b.page.Goto(ctx, url); err != nil {
		return err
	}
	if err := b.page.WaitForSelector(ctx, selector, b.opts.WaitTimeout); err != nil {
		if errors.Is(err, errors.ErrTypeTimeout) || ctx.Err() != nil {
			return errors.Timeout(fmt.Sprintf("loading %s timed out", what), err)
		}
		return err
	}
	return nil
}

type itemExtractor func(item page.Locator) (models.JobInfo, error)

// extractList runs extract over the first limit matches of selector. An
// item that fails is logged and left out.
func (b *baseBot) extractList(selector string, limit int, extract itemExtractor) ([]models.JobInfo, error) {
	items, err := b.page.Locator(selector).All()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	jobs := make([]models.JobInfo, 0, len(items))
	for i, item := range items {
		job, err := extract(item)
		if err != nil {
			b.logger.Error("failed to extract job item",
				zap.Int("index", i),
				zap.Error(err))
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func (b *baseBot) stamp(job *models.JobInfo) {
	job.Source = b.vocab.source
	job.UpdateTime = models.FormatUpdateTime(b.opts.Now())
	if job.Tags == nil {
		job.Tags = []string{}
	}
}

// fail logs err against op and returns it unchanged.
func (b *baseBot) fail(op string, err error, fields ...zap.Field) error {
	b.logger.Error("bot operation failed",
		append(fields, zap.String("op", op), zap.Error(err))...)
	return err
}
