// Package scheduler executes deferred send jobs once their run-after time
// has passed.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kellertobias/servobill-sub000/internal/domain/billing"
	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
	"github.com/kellertobias/servobill-sub000/internal/infrastructure/config"
	"github.com/kellertobias/servobill-sub000/internal/infrastructure/event"
)

// DeferredJobScheduler polls the deferred job table and re-drives each due
// job's attached event through the bus. Jobs are deleted only after a
// successful publish; a failed publish leaves the job for the next poll,
// which makes execution at-least-once.
type DeferredJobScheduler struct {
	jobs         billing.DeferredJobRepository
	eventBus     shared.EventPublisher
	serializer   *event.EventSerializer
	pollInterval time.Duration
	batchSize    int
	logger       *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDeferredJobScheduler creates a scheduler from configuration
func NewDeferredJobScheduler(
	jobs billing.DeferredJobRepository,
	eventBus shared.EventPublisher,
	serializer *event.EventSerializer,
	cfg config.SchedulerConfig,
	logger *zap.Logger,
) *DeferredJobScheduler {
	pollInterval := cfg.PollInterval
	if pollInterval == 0 {
		pollInterval = 30 * time.Second
	}
	batchSize := cfg.BatchSize
	if batchSize == 0 {
		batchSize = 20
	}

	return &DeferredJobScheduler{
		jobs:         jobs,
		eventBus:     eventBus,
		serializer:   serializer,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		logger:       logger,
	}
}

// Start starts the background polling loop
func (s *DeferredJobScheduler) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.pollLoop(ctx)

	s.logger.Info("deferred job scheduler started",
		zap.Duration("poll_interval", s.pollInterval),
		zap.Int("batch_size", s.batchSize),
	)
	return nil
}

// Stop gracefully stops the scheduler
func (s *DeferredJobScheduler) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("deferred job scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *DeferredJobScheduler) pollLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.ProcessDueJobs(ctx, time.Now())
		}
	}
}

// ProcessDueJobs runs one polling pass. Exported so a single pass can be
// triggered directly, for example from tests or an admin endpoint.
func (s *DeferredJobScheduler) ProcessDueJobs(ctx context.Context, now time.Time) {
	due, err := s.jobs.FindDue(ctx, now, s.batchSize)
	if err != nil {
		s.logger.Error("failed to find due jobs", zap.Error(err))
		return
	}

	for _, job := range due {
		s.processJob(ctx, job)
	}
}

func (s *DeferredJobScheduler) processJob(ctx context.Context, job *billing.DeferredJob) {
	evt, err := s.serializer.Deserialize(job.EventType, job.EventPayload)
	if err != nil {
		// An undeserializable job would be retried forever; drop it loudly
		s.logger.Error("failed to deserialize deferred job, deleting it",
			zap.String("job_id", job.GetID().String()),
			zap.String("event_type", job.EventType),
			zap.Error(err),
		)
		if delErr := s.jobs.Delete(ctx, job.GetID()); delErr != nil {
			s.logger.Error("failed to delete malformed job", zap.Error(delErr))
		}
		return
	}

	if err := s.eventBus.Publish(ctx, evt); err != nil {
		s.logger.Error("failed to publish deferred event, job stays queued",
			zap.String("job_id", job.GetID().String()),
			zap.String("event_type", job.EventType),
			zap.Error(err),
		)
		return
	}

	if err := s.jobs.Delete(ctx, job.GetID()); err != nil {
		// The job will fire again next poll; handlers must tolerate replays
		s.logger.Error("failed to delete executed job",
			zap.String("job_id", job.GetID().String()),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("deferred job executed",
		zap.String("job_id", job.GetID().String()),
		zap.String("event_type", job.EventType),
	)
}
