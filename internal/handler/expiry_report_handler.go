package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/vehicle-records-api/internal/dto"
	"github.com/noah-isme/vehicle-records-api/internal/middleware"
	"github.com/noah-isme/vehicle-records-api/internal/service"
	appErrors "github.com/noah-isme/vehicle-records-api/pkg/errors"
	"github.com/noah-isme/vehicle-records-api/pkg/response"
)

type expiryReportService interface {
	Report(ctx context.Context, req dto.ExpiryReportRequest) (*dto.ExpiryReportPage, bool, error)
	Export(ctx context.Context, req dto.ExpiryExportRequest) (*service.ExpiryExport, error)
}

// ExpiryReportHandler serves the document expiry report.
type ExpiryReportHandler struct {
	service expiryReportService
}

// NewExpiryReportHandler constructs the handler.
func NewExpiryReportHandler(service expiryReportService) *ExpiryReportHandler {
	return &ExpiryReportHandler{service: service}
}

// List godoc
// @Summary Document expiry report
// @Description Merges every tracked document kind into one list sorted by expiry date.
// @Tags Reports
// @Produce json
// @Param vehicle_no query string false "Vehicle registration number (substring, excludes licenses)"
// @Param owner_name query string false "Owner name (substring)"
// @Param start_date query string false "Range start (YYYY-MM-DD)"
// @Param end_date query string false "Range end (YYYY-MM-DD)"
// @Param exact_date query string false "Exact expiry date (YYYY-MM-DD), overrides the range"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(10)
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /reports/expiries [get]
func (h *ExpiryReportHandler) List(c *gin.Context) {
	var req dto.ExpiryReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return
	}
	page, cacheHit, err := h.service.Report(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, page.Items, &page.Pagination, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Export document expiry report
// @Description Renders every matching record, unpaginated, as CSV or PDF.
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Param vehicle_no query string false "Vehicle registration number"
// @Param owner_name query string false "Owner name"
// @Param start_date query string false "Range start (YYYY-MM-DD)"
// @Param end_date query string false "Range end (YYYY-MM-DD)"
// @Param exact_date query string false "Exact expiry date (YYYY-MM-DD)"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /reports/expiries/export [get]
func (h *ExpiryReportHandler) Export(c *gin.Context) {
	var req dto.ExpiryExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return
	}
	file, err := h.service.Export(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Content)
}
