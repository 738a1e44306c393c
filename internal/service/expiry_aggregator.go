package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/vehicle-records-api/internal/models"
	appErrors "github.com/noah-isme/vehicle-records-api/pkg/errors"
)

type documentFinder interface {
	Find(ctx context.Context, src models.DocumentSource, pred models.DocumentPredicate) ([]models.DocumentRow, error)
}

// ExpiryAggregator merges expiry records from every document source.
type ExpiryAggregator struct {
	documents documentFinder
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewExpiryAggregator constructs an ExpiryAggregator.
func NewExpiryAggregator(documents documentFinder, metrics *MetricsService, logger *zap.Logger) *ExpiryAggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpiryAggregator{documents: documents, metrics: metrics, logger: logger}
}

// Aggregate returns every record matching q, unsorted and unpaginated.
// Sources are scanned sequentially in registry order; license sources are
// skipped whenever a vehicle number filter is present. A failed lookup fails
// the whole call so callers never see a partial merge.
func (a *ExpiryAggregator) Aggregate(ctx context.Context, q models.ReportQuery) ([]models.ExpiryRecord, error) {
	records := make([]models.ExpiryRecord, 0)
	for _, src := range models.DocumentSources() {
		if q.VehicleNumber != "" && src.IsLicense() {
			continue
		}
		found, err := a.collect(ctx, src, predicateFor(src, q))
		if err != nil {
			return nil, appErrors.Internal(err, "failed to load "+string(src.Kind)+" documents")
		}
		records = append(records, found...)
	}
	return records, nil
}

func (a *ExpiryAggregator) collect(ctx context.Context, src models.DocumentSource, pred models.DocumentPredicate) ([]models.ExpiryRecord, error) {
	start := time.Now()
	rows, err := a.documents.Find(ctx, src, pred)
	a.metrics.ObserveDocumentQuery(src.Kind, time.Since(start))
	if err != nil {
		return nil, err
	}

	records := make([]models.ExpiryRecord, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		record, ok := MapExpiryRecord(row, src)
		if !ok {
			dropped++
			continue
		}
		records = append(records, record)
	}
	if dropped > 0 {
		a.logger.Debug("dropped documents without owner", zap.String("kind", string(src.Kind)), zap.Int("count", dropped))
	}
	return records, nil
}

// predicateFor builds the per-source filter. The vehicle filter only applies
// to vehicle linked sources and an exact date replaces any range.
func predicateFor(src models.DocumentSource, q models.ReportQuery) models.DocumentPredicate {
	pred := models.DocumentPredicate{OwnerName: q.OwnerName}
	if src.VehicleLinked {
		pred.VehicleNumber = q.VehicleNumber
	}
	if q.ExactDate != nil {
		pred.ExactDate = q.ExactDate
		return pred
	}
	pred.StartDate = q.StartDate
	pred.EndDate = q.EndDate
	return pred
}
