package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/project-matcher/internal/repositories"
)

const (
	pendingPollInterval = 10 * time.Second
	pendingPollBatch    = 10
	staleJobAge         = 15 * time.Minute
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(jobID uuid.UUID) bool
}

type worker struct {
	jobRepo      repositories.FitJobRepository
	jobService   FitJobService
	jobQueue     chan uuid.UUID
	concurrency  int
	pollInterval time.Duration
	staleAfter   time.Duration
	wg           sync.WaitGroup
	stopChan     chan struct{}
	stopOnce     sync.Once
	logger       *zap.Logger
}

func NewWorker(
	jobRepo repositories.FitJobRepository,
	jobService FitJobService,
	concurrency int,
	queueSize int,
	log *zap.Logger,
) Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	if queueSize < 1 {
		queueSize = 100
	}
	return &worker{
		jobRepo:      jobRepo,
		jobService:   jobService,
		jobQueue:     make(chan uuid.UUID, queueSize),
		concurrency:  concurrency,
		pollInterval: pendingPollInterval,
		staleAfter:   staleJobAge,
		stopChan:     make(chan struct{}),
		logger:       log.Named("worker"),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.requeueStale()

	w.wg.Add(1)
	go w.pollPendingJobs(ctx)

	w.logger.Info("worker started", zap.Int("concurrency", w.concurrency))
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info("stopping worker")
		close(w.stopChan)
		w.wg.Wait()
		w.logger.Info("worker stopped")
	})
}

// EnqueueJob implements Worker. It reports false when the worker is stopped.
// Jobs that do not fit in the queue stay queued in the database for the poller.
func (w *worker) EnqueueJob(jobID uuid.UUID) bool {
	select {
	case <-w.stopChan:
		w.logger.Warn("worker stopped, cannot enqueue job", zap.String("job_id", jobID.String()))
		return false
	default:
	}

	select {
	case w.jobQueue <- jobID:
		w.logger.Debug("job enqueued", zap.String("job_id", jobID.String()))
		return true
	default:
		w.logger.Warn("job queue full, leaving job for poller", zap.String("job_id", jobID.String()))
		return true
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case jobID := <-w.jobQueue:
			log := w.logger.With(zap.Int("worker", workerID), zap.String("job_id", jobID.String()))
			if err := w.jobService.ProcessJob(ctx, jobID); err != nil {
				log.Error("job failed", zap.Error(err))
			} else {
				log.Info("job completed")
			}
		}
	}
}

func (w *worker) pollPendingJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.requeueStale()

			pending, err := w.jobRepo.FindPendingJobs(pendingPollBatch)
			if err != nil {
				w.logger.Warn("failed to fetch pending jobs", zap.Error(err))
				continue
			}

			for _, job := range pending {
				select {
				case w.jobQueue <- job.ID:
				case <-w.stopChan:
					return
				}
			}
		}
	}
}

func (w *worker) requeueStale() {
	n, err := w.jobRepo.RequeueStale(w.staleAfter)
	if err != nil {
		w.logger.Warn("failed to requeue stale jobs", zap.Error(err))
		return
	}
	if n > 0 {
		w.logger.Info("requeued stale jobs", zap.Int64("count", n))
	}
}
