// Package service dispatches job requests to the platform bots and owns
// caching and publishing of their results.
package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"jobbots/common/cache"
	"jobbots/common/errors"
	"jobbots/common/telemetry"
	"jobbots/services/ingestion/internal/analyzer"
	"jobbots/services/ingestion/internal/bots"
	"jobbots/services/ingestion/internal/messaging"
	"jobbots/services/ingestion/internal/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

var tracer = telemetry.GetTracer("jobbots/ingestion/service")

// PlatformAll searches every configured platform at once.
const PlatformAll = "all"

// BotFactory builds the bot for a platform on first use.
type BotFactory func(platform string) (bots.Bot, error)

// AnalysisPublisher forwards analyzer results for storage.
type AnalysisPublisher interface {
	PublishAnalysis(ctx context.Context, analysis *models.Analysis) error
}

type Options struct {
	// Platforms are searched by PlatformAll, in this order.
	Platforms []string
	Cache     cache.Cache
	CacheTTL  time.Duration
	Publisher messaging.Publisher
	Analyzer  analyzer.Analyzer
	Analyses  AnalysisPublisher
	// SearchTimeout bounds a shared search once its first caller is gone.
	SearchTimeout time.Duration
}

const defaultSearchTimeout = 90 * time.Second

type JobService struct {
	opts    Options
	factory BotFactory
	logger  *zap.Logger

	mu   sync.Mutex
	bots map[string]bots.Bot

	searches singleflight.Group
	launches singleflight.Group
}

func New(factory BotFactory, opts Options, logger *zap.Logger) *JobService {
	if len(opts.Platforms) == 0 {
		opts.Platforms = bots.Platforms()
	}
	if opts.SearchTimeout <= 0 {
		opts.SearchTimeout = defaultSearchTimeout
	}
	return &JobService{
		opts:    opts,
		factory: factory,
		logger:  logger,
		bots:    make(map[string]bots.Bot),
	}
}

func (s *JobService) Platforms() []string {
	return append([]string(nil), s.opts.Platforms...)
}

// bot returns the platform's bot, building it on first use. Builds run
// outside s.mu so platforms launch in parallel; concurrent first calls for
// one platform share a single build.
func (s *JobService) bot(platform string) (bots.Bot, error) {
	if b, ok := s.cachedBot(platform); ok {
		return b, nil
	}
	if !s.supports(platform) {
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported platform %q", platform), nil)
	}

	v, err, _ := s.launches.Do(platform, func() (interface{}, error) {
		if b, ok := s.cachedBot(platform); ok {
			return b, nil
		}
		b, err := s.factory(platform)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.bots[platform] = b
		s.mu.Unlock()
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(bots.Bot), nil
}

func (s *JobService) cachedBot(platform string) (bots.Bot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bots[platform]
	return b, ok
}

func (s *JobService) supports(platform string) bool {
	for _, p := range s.opts.Platforms {
		if p == platform {
			return true
		}
	}
	return false
}

func searchKey(platform string, opts models.SearchOptions) string {
	return cache.Key("jobs", "search", platform, opts.Keyword, opts.City,
		strconv.Itoa(opts.Page), strconv.Itoa(opts.PageSize))
}

// Search runs a keyword search on one platform or, with PlatformAll, on
// every platform concurrently. Under PlatformAll a failing platform is
// logged and left out of the results.
func (s *JobService) Search(ctx context.Context, platform string, opts models.SearchOptions) ([]models.JobInfo, error) {
	ctx, span := tracer.Start(ctx, "Search")
	defer span.End()

	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, errors.InvalidInput(err.Error(), err)
	}
	if platform == "" {
		platform = PlatformAll
	}
	if platform != PlatformAll && !s.supports(platform) {
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported platform %q", platform), nil)
	}

	key := searchKey(platform, opts)
	span.SetAttributes(
		telemetry.String("search.platform", platform),
		telemetry.String("search.keyword", opts.Keyword),
		telemetry.String("cache.key", key))

	var cached models.JobList
	if s.cacheGet(ctx, key, &cached) {
		span.SetAttributes(telemetry.String("cache.result", "hit"))
		return cached, nil
	}
	span.SetAttributes(telemetry.String("cache.result", "miss"))

	// Identical searches share one run. The run is detached from the caller
	// that started it so one caller going away does not fail the others;
	// each caller still stops waiting when its own ctx is done.
	results := s.searches.DoChan(key, func() (interface{}, error) {
		work, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.SearchTimeout)
		defer cancel()

		jobs, complete, err := s.search(work, platform, opts)
		if err != nil {
			return nil, err
		}
		if complete {
			s.cacheSet(work, key, models.JobList(jobs))
		}
		s.publish(work, jobs)
		return jobs, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		err := errors.Timeout("waiting for search results", ctx.Err())
		telemetry.RecordError(span, err)
		return nil, err
	case res = <-results:
	}
	if res.Err != nil {
		telemetry.RecordError(span, res.Err)
		return nil, res.Err
	}

	jobs := res.Val.([]models.JobInfo)
	span.SetAttributes(telemetry.Int("search.results", len(jobs)))
	return jobs, nil
}

// search reports complete=false when some platform under PlatformAll
// failed, so the partial result is not cached.
func (s *JobService) search(ctx context.Context, platform string, opts models.SearchOptions) ([]models.JobInfo, bool, error) {
	if platform != PlatformAll {
		b, err := s.bot(platform)
		if err != nil {
			return nil, false, err
		}
		jobs, err := b.SearchJobs(ctx, opts)
		if err != nil {
			return nil, false, err
		}
		return jobs, true, nil
	}

	platforms := s.opts.Platforms
	results := make([][]models.JobInfo, len(platforms))
	failed := make([]bool, len(platforms))

	var g errgroup.Group
	for i, p := range platforms {
		g.Go(func() error {
			b, err := s.bot(p)
			if err == nil {
				results[i], err = b.SearchJobs(ctx, opts)
			}
			if err != nil {
				failed[i] = true
				s.logger.Error("platform search failed",
					zap.String("platform", p),
					zap.String("keyword", opts.Keyword),
					zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	complete := true
	var all []models.JobInfo
	for i := range platforms {
		if failed[i] {
			complete = false
			continue
		}
		all = append(all, results[i]...)
	}
	if all == nil {
		all = []models.JobInfo{}
	}
	return all, complete, nil
}

func (s *JobService) Detail(ctx context.Context, platform, jobID string) (*models.JobInfo, error) {
	ctx, span := tracer.Start(ctx, "Detail")
	defer span.End()
	span.SetAttributes(
		telemetry.String("job.platform", platform),
		telemetry.String("job.id", jobID))

	if jobID == "" {
		return nil, errors.InvalidInput("job_id is required", nil)
	}
	b, err := s.bot(platform)
	if err != nil {
		return nil, err
	}

	key := cache.Key("jobs", "detail", platform, jobID)
	var cached models.JobInfo
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	job, err := b.GetJobDetail(ctx, jobID)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("job detail failed",
			zap.String("platform", platform),
			zap.String("job_id", jobID),
			zap.Error(err))
		return nil, err
	}
	s.cacheSet(ctx, key, job)
	s.publish(ctx, []models.JobInfo{*job})
	return job, nil
}

func (s *JobService) CompanyJobs(ctx context.Context, platform string, opts models.CompanyJobsOptions) ([]models.JobInfo, error) {
	ctx, span := tracer.Start(ctx, "CompanyJobs")
	defer span.End()

	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, errors.InvalidInput(err.Error(), err)
	}
	span.SetAttributes(
		telemetry.String("job.platform", platform),
		telemetry.String("company.id", opts.CompanyID))

	b, err := s.bot(platform)
	if err != nil {
		return nil, err
	}
	jobs, err := b.GetCompanyJobs(ctx, opts)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("company jobs failed",
			zap.String("platform", platform),
			zap.String("company_id", opts.CompanyID),
			zap.Error(err))
		return nil, err
	}
	s.publish(ctx, jobs)
	return jobs, nil
}

// Analyze fetches a job's detail and has the analyzer read it.
func (s *JobService) Analyze(ctx context.Context, platform, jobID string) (*models.Analysis, error) {
	ctx, span := tracer.Start(ctx, "Analyze")
	defer span.End()

	if s.opts.Analyzer == nil {
		return nil, errors.Unavailable("job analysis is not configured", nil)
	}
	job, err := s.Detail(ctx, platform, jobID)
	if err != nil {
		return nil, err
	}
	analysis, err := s.opts.Analyzer.Analyze(ctx, job)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if s.opts.Analyses != nil {
		if err := s.opts.Analyses.PublishAnalysis(ctx, analysis); err != nil {
			s.logger.Warn("failed to publish analysis",
				zap.String("job_id", jobID),
				zap.Error(err))
		}
	}
	return analysis, nil
}

// Close closes every bot built so far.
func (s *JobService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for platform, b := range s.bots {
		if err := b.Close(); err != nil {
			s.logger.Error("failed to close bot", zap.String("platform", platform), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	s.bots = make(map[string]bots.Bot)
	return firstErr
}

func (s *JobService) cacheGet(ctx context.Context, key string, value interface{}) bool {
	if s.opts.Cache == nil {
		return false
	}
	err := s.opts.Cache.Get(ctx, key, value)
	if err == nil {
		s.logger.Debug("cache hit", zap.String("key", key))
		return true
	}
	if err != cache.ErrNotFound {
		s.logger.Warn("cache error", zap.String("key", key), zap.Error(err))
	}
	return false
}

func (s *JobService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.opts.Cache == nil {
		return
	}
	if err := s.opts.Cache.Set(ctx, key, value, s.opts.CacheTTL); err != nil {
		s.logger.Warn("failed to cache result", zap.String("key", key), zap.Error(err))
	}
}

func (s *JobService) publish(ctx context.Context, jobs []models.JobInfo) {
	if s.opts.Publisher == nil || len(jobs) == 0 {
		return
	}
	n, err := s.opts.Publisher.PublishJobs(ctx, jobs)
	if err != nil {
		s.logger.Warn("failed to publish jobs",
			zap.Int("published", n),
			zap.Int("total", len(jobs)),
			zap.Error(err))
	}
}
