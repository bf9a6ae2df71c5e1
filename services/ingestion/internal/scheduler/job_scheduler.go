package scheduler

import (
	"context"
	"sync"
	"time"

	"jobbots/common/errors"
	"jobbots/common/telemetry"
	"jobbots/services/ingestion/internal/config"
	"jobbots/services/ingestion/internal/events"
	"jobbots/services/ingestion/internal/messaging"
	"jobbots/services/ingestion/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var tracer = telemetry.GetTracer("jobbots/ingestion/scheduler")

// Searcher runs one search on one platform.
type Searcher interface {
	Search(ctx context.Context, platform string, opts models.SearchOptions) ([]models.JobInfo, error)
}

type EventPublisher interface {
	PublishSearchCompleted(ctx context.Context, event events.SearchCompletedEvent) error
}

type JobScheduler struct {
	searcher      Searcher
	publisher     messaging.Publisher
	events        EventPublisher
	plan          *config.ScrapePlan
	logger        *zap.Logger
	config        *config.Config
	limiter       *rate.Limiter
	mutex         sync.Mutex
	isActive      bool
	workerManager *workerManager
	taskProcessor *taskProcessor
	now           func() time.Time
}

func NewJobScheduler(searcher Searcher, publisher messaging.Publisher, eventPublisher EventPublisher, plan *config.ScrapePlan, logger *zap.Logger, config *config.Config) *JobScheduler {
	limit := rate.Inf
	if config.ScrapePerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(config.ScrapePerMinute))
	}

	scheduler := &JobScheduler{
		searcher:  searcher,
		publisher: publisher,
		events:    eventPublisher,
		plan:      plan,
		logger:    logger,
		config:    config,
		limiter:   rate.NewLimiter(limit, 1),
		now:       time.Now,
	}
	scheduler.workerManager = newWorkerManager(scheduler, logger)
	scheduler.taskProcessor = newTaskProcessor(scheduler, logger)
	return scheduler
}

func (s *JobScheduler) Start(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "JobScheduler.Start")
	defer span.End()

	s.mutex.Lock()
	if s.isActive {
		s.mutex.Unlock()
		return nil
	}
	s.isActive = true
	s.mutex.Unlock()

	ticker := time.NewTicker(s.config.PollingInterval)
	defer ticker.Stop()

	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.Error("initial scrape failed", zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.Error("periodic scrape failed", zap.Error(err))
			}
		}
	}
}

func (s *JobScheduler) Stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.isActive = false
}

type runStats struct {
	mu         sync.Mutex
	tasks      int
	failed     int
	jobs       int
	published  int
	byPlatform map[string]int
}

func (st *runStats) record(task scrapeTask, jobs, published int, err error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if err != nil {
		st.failed++
		return
	}
	st.jobs += jobs
	st.published += published
	st.byPlatform[task.platform] += jobs
}

// RunOnce scrapes the whole plan and returns the run summary, which is
// also published as an event.
func (s *JobScheduler) RunOnce(ctx context.Context) (*events.SearchCompletedEvent, error) {
	ctx, span := tracer.Start(ctx, "JobScheduler.RunOnce")
	defer span.End()

	runID := uuid.NewString()
	started := s.now()
	tasks := expandPlan(s.plan)
	span.SetAttributes(
		telemetry.String("run.id", runID),
		telemetry.Int("tasks.count", len(tasks)))
	s.logger.Info("starting scrape run",
		zap.String("run_id", runID),
		zap.Int("tasks", len(tasks)))

	stats := &runStats{tasks: len(tasks), byPlatform: make(map[string]int)}
	taskChan := make(chan scrapeTask)
	doneChan := make(chan bool)

	wg := s.workerManager.startWorkers(ctx, stats, taskChan)
	go s.taskProcessor.feedTasks(ctx, tasks, taskChan)
	go func() {
		wg.Wait()
		close(doneChan)
	}()

	if err := s.waitForCompletion(ctx, doneChan); err != nil {
		span.RecordError(err)
		return nil, err
	}

	event := events.SearchCompletedEvent{
		RunID:      runID,
		StartedAt:  started,
		FinishedAt: s.now(),
		Tasks:      stats.tasks,
		Failed:     stats.failed,
		Jobs:       stats.jobs,
		Published:  stats.published,
		ByPlatform: stats.byPlatform,
	}
	span.SetAttributes(
		telemetry.Int("jobs.found", event.Jobs),
		telemetry.Int("tasks.failed", event.Failed))
	s.logger.Info("completed scrape run",
		zap.String("run_id", runID),
		zap.Int("jobs", event.Jobs),
		zap.Int("published", event.Published),
		zap.Int("failed_tasks", event.Failed))

	if s.events != nil {
		if err := s.events.PublishSearchCompleted(ctx, event); err != nil {
			s.logger.Warn("failed to publish run summary", zap.Error(err))
		}
	}

	if event.Tasks > 0 && event.Failed == event.Tasks {
		return &event, errors.Unavailable("every scrape task failed", nil)
	}
	return &event, nil
}

func (s *JobScheduler) waitForCompletion(ctx context.Context, doneChan chan bool) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-doneChan:
		return ctx.Err()
	}
}
