package scheduler

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type workerManager struct {
	scheduler *JobScheduler
	logger    *zap.Logger
}

func newWorkerManager(scheduler *JobScheduler, logger *zap.Logger) *workerManager {
	return &workerManager{
		scheduler: scheduler,
		logger:    logger,
	}
}

func (w *workerManager) startWorkers(ctx context.Context, stats *runStats, taskChan chan scrapeTask) *sync.WaitGroup {
	var wg sync.WaitGroup

	numWorkers := w.scheduler.config.ScrapeWorkers
	if numWorkers < 1 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskChan {
				jobs, published, err := w.scheduler.taskProcessor.processTask(ctx, task)
				if err != nil {
					w.logger.Error("failed to process scrape task",
						zap.String("task", task.String()),
						zap.Error(err))
				}
				stats.record(task, jobs, published, err)
			}
		}()
	}

	return &wg
}
