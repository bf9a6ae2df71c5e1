package scheduler

import (
	"context"
	"fmt"
	"time"

	"jobbots/common/errors"
	"jobbots/services/ingestion/internal/config"
	"jobbots/services/ingestion/internal/models"

	"go.uber.org/zap"
)

type scrapeTask struct {
	platform string
	keyword  string
	city     string
	page     int
	pageSize int
}

func (t scrapeTask) String() string {
	return fmt.Sprintf("%s/%s/%s/p%d", t.platform, t.keyword, t.city, t.page)
}

// expandPlan lists platform x keyword x city x page in that nesting order.
func expandPlan(plan *config.ScrapePlan) []scrapeTask {
	var tasks []scrapeTask
	for _, platform := range plan.Platforms {
		for _, keyword := range plan.Keywords {
			for _, city := range plan.Cities {
				for page := 1; page <= plan.Pages; page++ {
					tasks = append(tasks, scrapeTask{
						platform: platform,
						keyword:  keyword,
						city:     city,
						page:     page,
						pageSize: plan.PageSize,
					})
				}
			}
		}
	}
	return tasks
}

// retryable reports whether another attempt could succeed.
func retryable(err error) bool {
	return errors.Is(err, errors.ErrTypeTimeout) ||
		errors.Is(err, errors.ErrTypeUnavailable) ||
		errors.Is(err, errors.ErrTypeRateLimit)
}

type taskProcessor struct {
	scheduler *JobScheduler
	logger    *zap.Logger
}

func newTaskProcessor(scheduler *JobScheduler, logger *zap.Logger) *taskProcessor {
	return &taskProcessor{
		scheduler: scheduler,
		logger:    logger,
	}
}

func (p *taskProcessor) feedTasks(ctx context.Context, tasks []scrapeTask, taskChan chan scrapeTask) {
	defer close(taskChan)
	for _, task := range tasks {
		select {
		case <-ctx.Done():
			return
		case taskChan <- task:
		}
	}
}

// processTask searches one task, retrying transient failures, and
// publishes what it found.
func (p *taskProcessor) processTask(ctx context.Context, task scrapeTask) (found, published int, err error) {
	ctx, span := tracer.Start(ctx, "JobScheduler.processTask")
	defer span.End()

	cfg := p.scheduler.config
	opts := models.SearchOptions{
		Keyword:  task.keyword,
		City:     task.city,
		Page:     task.page,
		PageSize: task.pageSize,
	}

	var jobs []models.JobInfo
	for attempt := 0; ; attempt++ {
		if err := p.scheduler.limiter.Wait(ctx); err != nil {
			span.RecordError(err)
			return 0, 0, err
		}

		jobs, err = p.search(ctx, task.platform, opts, cfg.SearchTimeout)
		if err == nil {
			break
		}
		if attempt >= cfg.MaxRetries || !retryable(err) {
			span.RecordError(err)
			return 0, 0, err
		}

		delay := cfg.RetryDelay * time.Duration(attempt+1)
		p.logger.Warn("retrying scrape task",
			zap.String("task", task.String()),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return 0, 0, ctx.Err()
		case <-time.After(delay):
		}
	}

	p.logger.Debug("scrape task done",
		zap.String("task", task.String()),
		zap.Int("jobs", len(jobs)))

	if p.scheduler.publisher == nil {
		return len(jobs), 0, nil
	}
	published, err = p.scheduler.publisher.PublishJobs(ctx, jobs)
	if err != nil {
		p.logger.Error("failed to publish jobs",
			zap.String("task", task.String()),
			zap.Int("published", published),
			zap.Error(err))
	}
	return len(jobs), published, nil
}

func (p *taskProcessor) search(ctx context.Context, platform string, opts models.SearchOptions, timeout time.Duration) ([]models.JobInfo, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return p.scheduler.searcher.Search(ctx, platform, opts)
}
