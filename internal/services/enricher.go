package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/donelist/backend/internal/infrastructure/queue"
	"github.com/donelist/backend/repository"
	"github.com/donelist/backend/usecase"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// Embedder abstracts the embedding API client.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// EnricherConfig controls how frequently the queue is drained.
type EnricherConfig struct {
	Interval    time.Duration
	BatchSize   int
	MaxAttempts int
}

// Enricher consumes queued enrichment jobs, calls the embedding API and
// patches the vector onto the task. A job that keeps failing is dropped once
// its attempts are spent; tasks it belonged to simply keep a nil embedding.
type Enricher struct {
	store    *queue.Store
	monitor  ConnectionHealth
	embedder Embedder
	tasks    repository.TaskRepository
	logger   *zap.Logger
	cron     *cron.Cron
	cfg      EnricherConfig
}

func NewEnricher(
	store *queue.Store,
	monitor ConnectionHealth,
	embedder Embedder,
	tasks repository.TaskRepository,
	logger *zap.Logger,
	cfg EnricherConfig,
) *Enricher {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Enricher{
		store:    store,
		monitor:  monitor,
		embedder: embedder,
		tasks:    tasks,
		logger:   logger,
		cfg:      cfg,
		cron:     cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	if _, err := e.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := e.Drain(ctx); err != nil {
			e.logger.Error("enrichment drain failed", zap.Error(err))
		}
	}); err != nil {
		logger.Error("invalid drain schedule", zap.Duration("interval", cfg.Interval), zap.Error(err))
	}

	return e
}

// EnqueueEnrichment persists a job for later processing. Satisfies the
// usecase.EnrichmentQueue port used by task creation.
func (e *Enricher) EnqueueEnrichment(ctx context.Context, taskID, text string) error {
	if e == nil || e.store == nil {
		return fmt.Errorf("enricher not configured")
	}
	return e.store.Enqueue(queue.Job{TaskID: taskID, Text: text})
}

// Start launches the cron scheduler.
func (e *Enricher) Start() {
	if e == nil || e.cron == nil {
		return
	}
	e.cron.Start()
	e.logger.Info("enrichment worker started")
}

// Stop gracefully stops the scheduler.
func (e *Enricher) Stop(ctx context.Context) {
	if e == nil || e.cron == nil {
		return
	}
	stopCtx := e.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	e.logger.Info("enrichment worker stopped")
}

// Drain processes queued jobs synchronously.
func (e *Enricher) Drain(ctx context.Context) error {
	if e == nil || e.store == nil {
		return nil
	}
	if e.monitor != nil && !e.monitor.IsOnline() {
		e.logger.Debug("skipping enrichment drain (store offline)")
		return nil
	}

	jobs, err := e.store.Batch(e.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, job := range jobs {
		if err := e.processJob(ctx, job); err != nil {
			e.logger.Warn("enrichment job failed",
				zap.String("job_id", job.ID),
				zap.String("task_id", job.TaskID),
				zap.Int("attempts", job.Attempts+1),
				zap.Error(err))

			if err := e.store.Remove(job); err != nil {
				e.logger.Warn("failed to remove enrichment job", zap.Error(err))
				continue
			}

			job.Attempts++
			if job.Attempts >= e.cfg.MaxAttempts {
				// Dropped for good; the task keeps a nil embedding.
				continue
			}
			if err := e.store.Requeue(job); err != nil {
				e.logger.Error("failed to requeue enrichment job", zap.Error(err))
			}
			continue
		}

		if err := e.store.Remove(job); err != nil {
			e.logger.Warn("failed to purge processed enrichment job", zap.Error(err))
		}
	}
	return nil
}

// Size returns the number of pending jobs.
func (e *Enricher) Size() int {
	if e == nil || e.store == nil {
		return 0
	}
	size, err := e.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (e *Enricher) processJob(ctx context.Context, job queue.Job) error {
	if ctx == nil {
		ctx = context.Background()
	}

	vector, err := e.embedder.Embed(ctx, job.Text)
	if err != nil {
		return err
	}
	return e.tasks.SetEmbedding(ctx, job.TaskID, vector)
}

var _ usecase.EnrichmentQueue = (*Enricher)(nil)
