package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/vehicle-records-api/internal/models"
)

// TextMessageSender delivers a single SMS and reports whether it was accepted.
type TextMessageSender interface {
	SendTextMessage(ctx context.Context, phone, message string) bool
}

// ExpiryNotifierConfig tunes the reminder scan.
type ExpiryNotifierConfig struct {
	LookaheadDays int
	CountryCode   string
}

// ExpiryNotifier sends reminders for documents expiring exactly LookaheadDays from today.
type ExpiryNotifier struct {
	documents documentFinder
	gateway   TextMessageSender
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       ExpiryNotifierConfig
	now       func() time.Time
}

// NewExpiryNotifier constructs the notifier.
func NewExpiryNotifier(documents documentFinder, gateway TextMessageSender, metrics *MetricsService, logger *zap.Logger, cfg ExpiryNotifierConfig) *ExpiryNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.LookaheadDays < 0 {
		cfg.LookaheadDays = 0
	}
	return &ExpiryNotifier{
		documents: documents,
		gateway:   gateway,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// RunDailyScan notifies owners of every notifiable document whose expiry
// equals today + LookaheadDays. Nothing records what was sent, so a rerun for
// the same day sends again; a missed day is never caught up. A failed lookup
// for one kind does not stop the others; such failures are joined into the
// returned error while the summary still covers every kind.
func (n *ExpiryNotifier) RunDailyScan(ctx context.Context, today time.Time) (*models.ScanSummary, error) {
	today = CalendarDate(today)
	target := today.AddDate(0, 0, n.cfg.LookaheadDays)
	summary := &models.ScanSummary{
		RunID:     uuid.NewString(),
		Today:     today,
		Target:    target,
		Kinds:     make([]models.ScanKindSummary, 0, len(models.NotifiableKinds)),
		StartedAt: n.now().UTC(),
	}
	logger := n.logger.With(zap.String("run_id", summary.RunID), zap.String("target", target.Format(models.DateLayout)))
	logger.Info("expiry scan started")

	var errs []error
	for _, kind := range models.NotifiableKinds {
		src, ok := models.SourceByKind(kind)
		if !ok {
			continue
		}
		result, err := n.scanKind(ctx, logger, src, target)
		if err != nil {
			result.Error = err.Error()
			errs = append(errs, fmt.Errorf("%s: %w", kind, err))
			logger.Error("expiry scan lookup failed", zap.String("kind", string(kind)), zap.Error(err))
		}
		summary.Kinds = append(summary.Kinds, result)
	}

	summary.FinishedAt = n.now().UTC()
	n.metrics.ObserveScan(summary.FinishedAt.Sub(summary.StartedAt), summary.FinishedAt)
	sent, failed, skipped := summary.Totals()
	logger.Info("expiry scan finished",
		zap.Int("sent", sent),
		zap.Int("failed", failed),
		zap.Int("skipped", skipped),
		zap.Int("lookup_errors", len(errs)),
	)
	return summary, errors.Join(errs...)
}

func (n *ExpiryNotifier) scanKind(ctx context.Context, logger *zap.Logger, src models.DocumentSource, target time.Time) (models.ScanKindSummary, error) {
	result := models.ScanKindSummary{Kind: src.Kind}
	rows, err := n.documents.Find(ctx, src, models.DocumentPredicate{ExactDate: &target})
	if err != nil {
		return result, err
	}
	result.Selected = len(rows)

	for _, row := range rows {
		rec, ok := MapExpiryRecord(row, src)
		if !ok {
			n.skip(&result)
			continue
		}
		phone := NormalizePhone(rec.OwnerMobile, n.cfg.CountryCode)
		if phone == "" {
			logger.Debug("skipping owner without mobile", zap.String("kind", string(src.Kind)), zap.Int64("citizen_id", rec.CitizenID))
			n.skip(&result)
			continue
		}
		if n.gateway.SendTextMessage(ctx, phone, ComposeReminder(rec)) {
			result.Sent++
			n.metrics.RecordNotification(src.Kind, NotificationSent)
			continue
		}
		result.Failed++
		n.metrics.RecordNotification(src.Kind, NotificationFailed)
		logger.Warn("expiry reminder not delivered",
			zap.String("kind", string(src.Kind)),
			zap.Int64("citizen_id", rec.CitizenID),
			zap.String("identifier", rec.Identifier),
		)
	}
	return result, nil
}

func (n *ExpiryNotifier) skip(result *models.ScanKindSummary) {
	result.Skipped++
	n.metrics.RecordNotification(result.Kind, NotificationSkipped)
}
