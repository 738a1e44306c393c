package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/vehicle-records-api/internal/dto"
	"github.com/noah-isme/vehicle-records-api/internal/models"
	appErrors "github.com/noah-isme/vehicle-records-api/pkg/errors"
)

type stubAggregator struct {
	records []models.ExpiryRecord
	err     error
	calls   int
	lastQ   models.ReportQuery
}

func (s *stubAggregator) Aggregate(_ context.Context, q models.ReportQuery) ([]models.ExpiryRecord, error) {
	s.calls++
	s.lastQ = q
	if s.err != nil {
		return nil, s.err
	}
	out := make([]models.ExpiryRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func newReportService(agg expiryAggregator, cache *CacheService) *ExpiryReportService {
	return NewExpiryReportService(ExpiryReportServiceParams{
		Aggregator: agg,
		Cache:      cache,
		Logger:     zap.NewNop(),
		Now:        func() time.Time { return time.Date(2024, 1, 5, 10, 30, 0, 0, time.UTC) },
	})
}

func record(kind models.DocumentKind, owner string, expiry time.Time) models.ExpiryRecord {
	return models.ExpiryRecord{Kind: kind, OwnerName: owner, Identifier: owner + "-doc", ExpiryDate: expiry, CitizenID: 1}
}

func TestExpiryReportMergesAcrossKindsByDate(t *testing.T) {
	agg := &stubAggregator{records: []models.ExpiryRecord{
		record(models.KindDrivingLicense, "dl", day(2024, 3, 1)),
		record(models.KindInsurance, "ins", day(2024, 1, 10)),
		record(models.KindPUCC, "pucc", day(2024, 2, 20)),
	}}
	svc := newReportService(agg, nil)

	page, cached, err := svc.Report(context.Background(), dto.ExpiryReportRequest{})
	require.NoError(t, err)
	assert.False(t, cached)
	require.Len(t, page.Items, 3)
	assert.Equal(t, []string{"2024-01-10", "2024-02-20", "2024-03-01"},
		[]string{page.Items[0].ExpiryDate, page.Items[1].ExpiryDate, page.Items[2].ExpiryDate})
	assert.Equal(t, models.KindInsurance, page.Items[0].Type)
	assert.Equal(t, 3, page.Pagination.Total)
	assert.Equal(t, 1, page.Pagination.LastPage)
	require.NotNil(t, page.Pagination.From)
	assert.Equal(t, 1, *page.Pagination.From)
	assert.Equal(t, 3, *page.Pagination.To)
}

func TestSortByExpiryIsStable(t *testing.T) {
	records := []models.ExpiryRecord{
		record(models.KindLearnerLicense, "a", day(2024, 1, 2)),
		record(models.KindInsurance, "b", day(2024, 1, 1)),
		record(models.KindPermit, "c", day(2024, 1, 2)),
		record(models.KindVLTD, "d", day(2024, 1, 1)),
	}
	SortByExpiry(records)

	owners := make([]string, len(records))
	for i, r := range records {
		owners[i] = r.OwnerName
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, owners)
	for i := 1; i < len(records); i++ {
		assert.False(t, records[i].ExpiryDate.Before(records[i-1].ExpiryDate))
	}
}

func TestExpiryReportPagination(t *testing.T) {
	records := make([]models.ExpiryRecord, 0, 25)
	for i := 0; i < 25; i++ {
		records = append(records, record(models.KindFitness, "o", day(2024, 1, 1).AddDate(0, 0, i)))
	}
	svc := newReportService(&stubAggregator{records: records}, nil)

	page, _, err := svc.Report(context.Background(), dto.ExpiryReportRequest{Page: 3, PerPage: 10})
	require.NoError(t, err)
	assert.Len(t, page.Items, 5)
	assert.Equal(t, 3, page.Pagination.CurrentPage)
	assert.Equal(t, 3, page.Pagination.LastPage)
	assert.Equal(t, 21, *page.Pagination.From)
	assert.Equal(t, 25, *page.Pagination.To)
	assert.Equal(t, "2024-01-21", page.Items[0].ExpiryDate)

	page, _, err = svc.Report(context.Background(), dto.ExpiryReportRequest{Page: 9, PerPage: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
	assert.Nil(t, page.Pagination.From)
	assert.Nil(t, page.Pagination.To)
	assert.Equal(t, 25, page.Pagination.Total)
}

func TestExpiryReportEmpty(t *testing.T) {
	svc := newReportService(&stubAggregator{}, nil)

	page, _, err := svc.Report(context.Background(), dto.ExpiryReportRequest{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.Pagination.Total)
	assert.Equal(t, 1, page.Pagination.LastPage)
	assert.Equal(t, 10, page.Pagination.PerPage)
}

func TestExpiryReportBuildQuery(t *testing.T) {
	svc := newReportService(&stubAggregator{}, nil)

	q, err := svc.BuildQuery(dto.ExpiryReportRequest{
		VehicleNo: " KA01 ",
		ExactDate: "2024-01-31",
		StartDate: "2024-01-01",
		EndDate:   "2024-12-31",
	})
	require.NoError(t, err)
	assert.Equal(t, "KA01", q.VehicleNumber)
	require.NotNil(t, q.ExactDate)
	assert.Equal(t, day(2024, 1, 31), *q.ExactDate)
	assert.Nil(t, q.StartDate)
	assert.Nil(t, q.EndDate)

	q, err = svc.BuildQuery(dto.ExpiryReportRequest{StartDate: "2024-01-01"})
	require.NoError(t, err)
	assert.Equal(t, day(2024, 1, 1), *q.StartDate)
	assert.Nil(t, q.EndDate)
}

func TestExpiryReportBuildQueryValidation(t *testing.T) {
	svc := newReportService(&stubAggregator{}, nil)

	cases := map[string]dto.ExpiryReportRequest{
		"bad date":      {StartDate: "31-01-2024"},
		"inverted":      {StartDate: "2024-02-01", EndDate: "2024-01-01"},
		"per page":      {PerPage: 101},
		"negative page": {Page: -1},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.BuildQuery(req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, appErrors.ErrValidation))
		})
	}
}

func TestExpiryReportPropagatesAggregationFailure(t *testing.T) {
	svc := newReportService(&stubAggregator{err: appErrors.Internal(errors.New("boom"), "failed")}, nil)

	page, _, err := svc.Report(context.Background(), dto.ExpiryReportRequest{})
	require.Error(t, err)
	assert.Nil(t, page)
}

func TestExpiryReportServesFromCache(t *testing.T) {
	agg := &stubAggregator{records: []models.ExpiryRecord{record(models.KindPUCC, "p", day(2024, 1, 3))}}
	repo := &memoryCacheRepo{}
	cache := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)
	svc := newReportService(agg, cache)

	first, cached, err := svc.Report(context.Background(), dto.ExpiryReportRequest{OwnerName: "p"})
	require.NoError(t, err)
	assert.False(t, cached)

	second, cached, err := svc.Report(context.Background(), dto.ExpiryReportRequest{OwnerName: "p"})
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, agg.calls)
	assert.Equal(t, 1, repo.sets)

	_, cached, err = svc.Report(context.Background(), dto.ExpiryReportRequest{OwnerName: "q"})
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 2, agg.calls)
}

func TestReportCacheKeyDistinguishesFilters(t *testing.T) {
	a := reportCacheKey(models.ReportQuery{VehicleNumber: "x"})
	b := reportCacheKey(models.ReportQuery{OwnerName: "x"})
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "expiries:"))
}

func TestExpiryReportExportCSV(t *testing.T) {
	agg := &stubAggregator{records: []models.ExpiryRecord{
		record(models.KindPermit, "late", day(2024, 6, 1)),
		record(models.KindVLTD, "early", day(2024, 2, 1)),
	}}
	svc := newReportService(agg, nil)

	out, err := svc.Export(context.Background(), dto.ExpiryExportRequest{ExpiryReportRequest: dto.ExpiryReportRequest{PerPage: 1}})
	require.NoError(t, err)
	assert.Equal(t, "text/csv", out.ContentType)
	assert.Equal(t, "expiry-report-20240105-103000.csv", out.Filename)

	lines := strings.Split(strings.TrimSpace(string(out.Content)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Type,Owner Name,Owner Mobile,Identifier,Expiry Date,Citizen ID", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "VLTD,early"))
	assert.True(t, strings.HasPrefix(lines[2], "Permit,late"))
}

func TestExpiryReportExportPDF(t *testing.T) {
	svc := newReportService(&stubAggregator{records: []models.ExpiryRecord{record(models.KindFitness, "f", day(2024, 1, 1))}}, nil)

	out, err := svc.Export(context.Background(), dto.ExpiryExportRequest{Format: models.ExportFormatPDF})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", out.ContentType)
	assert.True(t, strings.HasSuffix(out.Filename, ".pdf"))
	assert.True(t, strings.HasPrefix(string(out.Content), "%PDF"))
}

func TestExpiryReportExportRejectsUnknownFormat(t *testing.T) {
	svc := newReportService(&stubAggregator{}, nil)

	_, err := svc.Export(context.Background(), dto.ExpiryExportRequest{Format: "xlsx"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestExpiryReportOwnerScenarioAcrossKinds(t *testing.T) {
	finder := &stubDocumentFinder{rows: map[models.DocumentKind][]models.DocumentRow{
		models.KindDrivingLicense: {ownedRow(1, 7, "Asha", "9000000001", "DL-1", day(2024, 3, 1))},
		models.KindInsurance:      {ownedRow(2, 7, "Asha", "9000000001", "KA01", day(2024, 1, 10))},
		models.KindPermit:         {ownedRow(3, 7, "Asha", "9000000001", "KA01", day(2024, 2, 20))},
	}}
	svc := newReportService(NewExpiryAggregator(finder, nil, nil), nil)

	page, _, err := svc.Report(context.Background(), dto.ExpiryReportRequest{OwnerName: "Asha"})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "2024-01-10", page.Items[0].ExpiryDate)
	assert.Equal(t, "2024-02-20", page.Items[1].ExpiryDate)
	assert.Equal(t, "2024-03-01", page.Items[2].ExpiryDate)
	for _, call := range finder.calls {
		assert.Equal(t, "Asha", call.pred.OwnerName)
	}
}

func TestExpiryReportSortHoldsAcrossPages(t *testing.T) {
	rows := map[models.DocumentKind][]models.DocumentRow{}
	id := int64(0)
	for i, src := range models.DocumentSources() {
		for j := 0; j < 3; j++ {
			id++
			rows[src.Kind] = append(rows[src.Kind], ownedRow(id, id, "Owner", "", "X", day(2024, 12, 1).AddDate(0, 0, -(i*5+j*7))))
		}
	}
	svc := newReportService(NewExpiryAggregator(&stubDocumentFinder{rows: rows}, nil, nil), nil)

	var all []string
	for p := 1; ; p++ {
		page, _, err := svc.Report(context.Background(), dto.ExpiryReportRequest{Page: p, PerPage: 5})
		require.NoError(t, err)
		assert.LessOrEqual(t, len(page.Items), 5)
		if p > page.Pagination.LastPage {
			assert.Empty(t, page.Items)
			break
		}
		for _, item := range page.Items {
			all = append(all, item.ExpiryDate)
		}
	}
	require.Len(t, all, 24)
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1], all[i])
	}
}
