package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/vehicle-records-api/internal/dto"
	"github.com/noah-isme/vehicle-records-api/internal/models"
	"github.com/noah-isme/vehicle-records-api/internal/service"
	appErrors "github.com/noah-isme/vehicle-records-api/pkg/errors"
)

type fakeExpiryReportSrv struct {
	page       *dto.ExpiryReportPage
	hit        bool
	err        error
	export     *service.ExpiryExport
	lastReport dto.ExpiryReportRequest
	lastExport dto.ExpiryExportRequest
}

func (f *fakeExpiryReportSrv) Report(_ context.Context, req dto.ExpiryReportRequest) (*dto.ExpiryReportPage, bool, error) {
	f.lastReport = req
	return f.page, f.hit, f.err
}

func (f *fakeExpiryReportSrv) Export(_ context.Context, req dto.ExpiryExportRequest) (*service.ExpiryExport, error) {
	f.lastExport = req
	return f.export, f.err
}

type responseEnvelope struct {
	Data       []map[string]interface{} `json:"data"`
	Pagination map[string]interface{}   `json:"pagination"`
	Meta       map[string]interface{}   `json:"meta"`
	Error      map[string]interface{}   `json:"error"`
}

func serve(h gin.HandlerFunc, target string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	h(c)
	return rec
}

func TestExpiryReportHandlerList(t *testing.T) {
	from, to := 1, 1
	srv := &fakeExpiryReportSrv{
		hit: true,
		page: &dto.ExpiryReportPage{
			Items: []dto.ExpiryRecordResponse{{
				Type: models.KindInsurance, OwnerName: "Asha", OwnerMobile: "9000000001",
				Identifier: "KA01AB1234", ExpiryDate: "2024-01-31", CitizenID: 7,
			}},
			Pagination: models.Pagination{CurrentPage: 1, PerPage: 10, LastPage: 1, Total: 1, From: &from, To: &to},
		},
	}
	h := NewExpiryReportHandler(srv)

	rec := serve(h.List, "/reports/expiries?vehicle_no=KA01&owner_name=asha&start_date=2024-01-01&exact_date=2024-01-31&page=1&per_page=10")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "KA01", srv.lastReport.VehicleNo)
	assert.Equal(t, "asha", srv.lastReport.OwnerName)
	assert.Equal(t, "2024-01-31", srv.lastReport.ExactDate)
	assert.Equal(t, "2024-01-01", srv.lastReport.StartDate)
	assert.Equal(t, 10, srv.lastReport.PerPage)

	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "Insurance", envelope.Data[0]["type"])
	assert.Equal(t, "2024-01-31", envelope.Data[0]["expiry_date"])
	assert.Equal(t, float64(1), envelope.Pagination["total"])
	assert.Equal(t, float64(1), envelope.Pagination["current_page"])
	assert.Equal(t, true, envelope.Meta["cache_hit"])
}

func TestExpiryReportHandlerListRejectsMalformedQuery(t *testing.T) {
	h := NewExpiryReportHandler(&fakeExpiryReportSrv{})

	rec := serve(h.List, "/reports/expiries?page=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExpiryReportHandlerListServiceErrors(t *testing.T) {
	cases := map[string]struct {
		err    error
		status int
	}{
		"validation": {appErrors.Clone(appErrors.ErrValidation, "start_date must not be after end_date"), http.StatusBadRequest},
		"internal":   {appErrors.Internal(errors.New("db down"), "failed to load PUCC documents"), http.StatusInternalServerError},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			h := NewExpiryReportHandler(&fakeExpiryReportSrv{err: tc.err})
			rec := serve(h.List, "/reports/expiries")
			assert.Equal(t, tc.status, rec.Code)

			var envelope responseEnvelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
			assert.NotEmpty(t, envelope.Error["code"])
		})
	}
}

func TestExpiryReportHandlerExport(t *testing.T) {
	srv := &fakeExpiryReportSrv{export: &service.ExpiryExport{
		Filename:    "expiry-report-20240105-103000.csv",
		ContentType: "text/csv",
		Content:     []byte("Type,Owner Name\n"),
	}}
	h := NewExpiryReportHandler(srv)

	rec := serve(h.Export, "/reports/expiries/export?format=csv&owner_name=asha")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ExportFormatCSV, srv.lastExport.Format)
	assert.Equal(t, "asha", srv.lastExport.OwnerName)
	assert.Equal(t, "attachment; filename=\"expiry-report-20240105-103000.csv\"", rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Equal(t, "Type,Owner Name\n", rec.Body.String())
}

func TestMetricsHandlerReady(t *testing.T) {
	h := NewMetricsHandler(service.NewMetricsService(), map[string]ReadinessCheck{
		"database": func(context.Context) error { return nil },
	})
	assert.Equal(t, http.StatusOK, serve(h.Ready, "/ready").Code)

	h = NewMetricsHandler(nil, map[string]ReadinessCheck{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})
	rec := serve(h.Ready, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestMetricsHandlerPrometheus(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.RecordNotification(models.KindPUCC, service.NotificationSent)
	h := NewMetricsHandler(metrics, nil)

	rec := serve(h.Prometheus, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `expiry_notifications_total{kind="PUCC",outcome="sent"} 1`)
}
