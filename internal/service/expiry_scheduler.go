package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/vehicle-records-api/internal/models"
	"github.com/noah-isme/vehicle-records-api/pkg/jobs"
)

// ExpiryScanJobType identifies reminder scan jobs on the queue.
const ExpiryScanJobType = "expiry_scan"

type scanEnqueuer interface {
	Enqueue(job jobs.Job) error
}

type dailyScanner interface {
	RunDailyScan(ctx context.Context, today time.Time) (*models.ScanSummary, error)
}

// ExpirySchedulerConfig sets the local wall-clock time of the daily scan.
type ExpirySchedulerConfig struct {
	Hour     int
	Minute   int
	Location *time.Location
}

// ExpiryScheduler enqueues one reminder scan per day at a fixed local time.
type ExpiryScheduler struct {
	queue  scanEnqueuer
	cfg    ExpirySchedulerConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewExpiryScheduler constructs the scheduler.
func NewExpiryScheduler(queue scanEnqueuer, cfg ExpirySchedulerConfig, logger *zap.Logger) *ExpiryScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &ExpiryScheduler{queue: queue, cfg: cfg, logger: logger, now: time.Now}
}

// Start runs the scheduling loop until ctx is cancelled.
func (s *ExpiryScheduler) Start(ctx context.Context) {
	go s.loop(ctx)
}

func (s *ExpiryScheduler) loop(ctx context.Context) {
	for {
		now := s.now().In(s.cfg.Location)
		next := NextRunAt(now, s.cfg.Hour, s.cfg.Minute)
		s.logger.Info("next expiry scan scheduled", zap.Time("at", next))

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.Trigger(next)
		}
	}
}

// Trigger enqueues a scan for the calendar day of at.
func (s *ExpiryScheduler) Trigger(at time.Time) {
	job := jobs.Job{ID: uuid.NewString(), Type: ExpiryScanJobType, Payload: at}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Error("failed to enqueue expiry scan", zap.String("job_id", job.ID), zap.Error(err))
		return
	}
	s.logger.Info("expiry scan enqueued", zap.String("job_id", job.ID))
}

// NextRunAt returns the first hour:minute in now's location strictly after now.
func NextRunAt(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(now.Year(), now.Month(), now.Day()+1, hour, minute, 0, 0, now.Location())
	}
	return next
}

// ExpiryScanWorker runs queued scans.
type ExpiryScanWorker struct {
	scanner dailyScanner
	logger  *zap.Logger
}

// NewExpiryScanWorker constructs the worker.
func NewExpiryScanWorker(scanner dailyScanner, logger *zap.Logger) *ExpiryScanWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpiryScanWorker{scanner: scanner, logger: logger}
}

// Handle implements jobs.Handler.
func (w *ExpiryScanWorker) Handle(ctx context.Context, job jobs.Job) error {
	if job.Type != ExpiryScanJobType {
		return errors.New("unsupported job type " + job.Type)
	}
	today, ok := job.Payload.(time.Time)
	if !ok {
		today = time.Now()
	}
	summary, err := w.scanner.RunDailyScan(ctx, today)
	if summary != nil {
		sent, failed, skipped := summary.Totals()
		w.logger.Info("expiry scan job finished",
			zap.String("job_id", job.ID),
			zap.String("run_id", summary.RunID),
			zap.Int("sent", sent),
			zap.Int("failed", failed),
			zap.Int("skipped", skipped),
		)
	}
	return err
}
