package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/vehicle-records-api/internal/dto"
	"github.com/noah-isme/vehicle-records-api/internal/models"
	appErrors "github.com/noah-isme/vehicle-records-api/pkg/errors"
	"github.com/noah-isme/vehicle-records-api/pkg/export"
	"github.com/noah-isme/vehicle-records-api/pkg/pagination"
)

type expiryAggregator interface {
	Aggregate(ctx context.Context, q models.ReportQuery) ([]models.ExpiryRecord, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title, subtitle string) ([]byte, error)
}

// ExpiryReportConfig tunes caching and export rendering.
type ExpiryReportConfig struct {
	CacheTTL time.Duration
	Location *time.Location
}

// ExpiryReportServiceParams groups the report service dependencies.
type ExpiryReportServiceParams struct {
	Aggregator expiryAggregator
	Cache      *CacheService
	Validator  *validator.Validate
	CSV        csvRenderer
	PDF        pdfRenderer
	Metrics    *MetricsService
	Logger     *zap.Logger
	Config     ExpiryReportConfig
	Now        func() time.Time
}

// ExpiryReportService serves the merged, sorted and paginated expiry report.
type ExpiryReportService struct {
	aggregator expiryAggregator
	cache      *CacheService
	validate   *validator.Validate
	csv        csvRenderer
	pdf        pdfRenderer
	metrics    *MetricsService
	logger     *zap.Logger
	cfg        ExpiryReportConfig
	now        func() time.Time
}

// ExpiryExport is a rendered report file.
type ExpiryExport struct {
	Filename    string
	ContentType string
	Content     []byte
}

// NewExpiryReportService constructs the report service.
func NewExpiryReportService(p ExpiryReportServiceParams) *ExpiryReportService {
	if p.Validator == nil {
		p.Validator = validator.New()
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.CSV == nil {
		p.CSV = export.NewCSVExporter()
	}
	if p.PDF == nil {
		p.PDF = export.NewPDFExporter()
	}
	if p.Config.Location == nil {
		p.Config.Location = time.UTC
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &ExpiryReportService{
		aggregator: p.Aggregator,
		cache:      p.Cache,
		validate:   p.Validator,
		csv:        p.CSV,
		pdf:        p.PDF,
		metrics:    p.Metrics,
		logger:     p.Logger,
		cfg:        p.Config,
		now:        p.Now,
	}
}

// Report validates req and returns the requested page. The boolean reports
// whether the page was served from cache.
func (s *ExpiryReportService) Report(ctx context.Context, req dto.ExpiryReportRequest) (*dto.ExpiryReportPage, bool, error) {
	q, err := s.BuildQuery(req)
	if err != nil {
		return nil, false, err
	}
	return s.Run(ctx, q)
}

// BuildQuery validates req and converts it into a ReportQuery. When an exact
// date is given the range bounds are discarded.
func (s *ExpiryReportService) BuildQuery(req dto.ExpiryReportRequest) (models.ReportQuery, error) {
	if err := s.validate.Struct(req); err != nil {
		return models.ReportQuery{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report filters")
	}

	q := models.ReportQuery{
		VehicleNumber: strings.TrimSpace(req.VehicleNo),
		OwnerName:     strings.TrimSpace(req.OwnerName),
		Page:          req.Page,
		PerPage:       req.PerPage,
	}
	if req.ExactDate != "" {
		q.ExactDate = parseDate(req.ExactDate)
		return q, nil
	}
	q.StartDate = parseDate(req.StartDate)
	q.EndDate = parseDate(req.EndDate)
	if q.StartDate != nil && q.EndDate != nil && q.StartDate.After(*q.EndDate) {
		return models.ReportQuery{}, appErrors.Clone(appErrors.ErrValidation, "start_date must not be after end_date")
	}
	return q, nil
}

// Run aggregates, sorts and paginates q.
func (s *ExpiryReportService) Run(ctx context.Context, q models.ReportQuery) (*dto.ExpiryReportPage, bool, error) {
	key := reportCacheKey(q)
	var cached dto.ExpiryReportPage
	if s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}

	records, err := s.aggregator.Aggregate(ctx, q)
	if err != nil {
		return nil, false, err
	}
	s.metrics.ObserveReportSize(len(records))

	resp := toReportPage(PaginateExpiries(records, q.Page, q.PerPage))
	s.cache.Set(ctx, key, resp, s.cfg.CacheTTL)
	return resp, false, nil
}

// Export renders every record matching req, unpaginated, as CSV or PDF.
func (s *ExpiryReportService) Export(ctx context.Context, req dto.ExpiryExportRequest) (*ExpiryExport, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export request")
	}
	q, err := s.BuildQuery(req.ExpiryReportRequest)
	if err != nil {
		return nil, err
	}
	format := req.Format
	if format == "" {
		format = models.ExportFormatCSV
	}

	records, err := s.aggregator.Aggregate(ctx, q)
	if err != nil {
		return nil, err
	}
	SortByExpiry(records)

	now := s.now().In(s.cfg.Location)
	data := expiryDataset(records)
	name := "expiry-report-" + now.Format("20060102-150405")

	switch format {
	case models.ExportFormatPDF:
		subtitle := fmt.Sprintf("Generated %s - %d records", now.Format("02-01-2006 15:04"), len(records))
		content, err := s.pdf.Render(data, "Document Expiry Report", subtitle)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to render pdf export")
		}
		return &ExpiryExport{Filename: name + ".pdf", ContentType: "application/pdf", Content: content}, nil
	default:
		content, err := s.csv.Render(data)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to render csv export")
		}
		return &ExpiryExport{Filename: name + ".csv", ContentType: "text/csv", Content: content}, nil
	}
}

// SortByExpiry orders records by ascending expiry date. The sort is stable so
// records sharing a date keep their registry and row order.
func SortByExpiry(records []models.ExpiryRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ExpiryDate.Before(records[j].ExpiryDate)
	})
}

// PaginateExpiries sorts records and returns the requested window.
func PaginateExpiries(records []models.ExpiryRecord, page, perPage int) pagination.Page[models.ExpiryRecord] {
	SortByExpiry(records)
	return pagination.Paginate(records, page, perPage)
}

func toReportPage(page pagination.Page[models.ExpiryRecord]) *dto.ExpiryReportPage {
	items := make([]dto.ExpiryRecordResponse, 0, len(page.Items))
	for _, rec := range page.Items {
		items = append(items, toRecordResponse(rec))
	}
	meta := models.Pagination{
		CurrentPage: page.Page,
		PerPage:     page.PerPage,
		LastPage:    page.LastPage,
		Total:       page.Total,
	}
	if len(page.Items) > 0 {
		from, to := page.From, page.To
		meta.From = &from
		meta.To = &to
	}
	return &dto.ExpiryReportPage{Items: items, Pagination: meta}
}

func toRecordResponse(rec models.ExpiryRecord) dto.ExpiryRecordResponse {
	return dto.ExpiryRecordResponse{
		Type:        rec.Kind,
		OwnerName:   rec.OwnerName,
		OwnerMobile: rec.OwnerMobile,
		Identifier:  rec.Identifier,
		ExpiryDate:  rec.ExpiryDate.Format(models.DateLayout),
		CitizenID:   rec.CitizenID,
	}
}

var expiryColumns = []export.Column{
	{Key: "type", Title: "Type", Width: 1.2},
	{Key: "owner_name", Title: "Owner Name", Width: 2},
	{Key: "owner_mobile", Title: "Owner Mobile", Width: 1.4},
	{Key: "identifier", Title: "Identifier", Width: 1.6},
	{Key: "expiry_date", Title: "Expiry Date", Width: 1.1},
	{Key: "citizen_id", Title: "Citizen ID", Width: 0.8},
}

func expiryDataset(records []models.ExpiryRecord) export.Dataset {
	rows := make([]map[string]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, map[string]string{
			"type":         string(rec.Kind),
			"owner_name":   rec.OwnerName,
			"owner_mobile": rec.OwnerMobile,
			"identifier":   rec.Identifier,
			"expiry_date":  rec.ExpiryDate.Format(models.DateLayout),
			"citizen_id":   strconv.FormatInt(rec.CitizenID, 10),
		})
	}
	return export.Dataset{Columns: expiryColumns, Rows: rows}
}

func reportCacheKey(q models.ReportQuery) string {
	parts := []string{
		"v=" + strings.ToLower(q.VehicleNumber),
		"o=" + strings.ToLower(q.OwnerName),
		"x=" + formatDate(q.ExactDate),
		"s=" + formatDate(q.StartDate),
		"e=" + formatDate(q.EndDate),
		"p=" + strconv.Itoa(q.Page),
		"n=" + strconv.Itoa(q.PerPage),
	}
	return "expiries:" + strings.Join(parts, "|")
}

// parseDate expects a value already checked by the datetime validator.
func parseDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return nil
	}
	return &t
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(models.DateLayout)
}
