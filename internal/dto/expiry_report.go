package dto

import "github.com/noah-isme/vehicle-records-api/internal/models"

// ExpiryReportRequest captures GET /reports/expiries query parameters.
type ExpiryReportRequest struct {
	VehicleNo string `form:"vehicle_no" validate:"omitempty,max=32"`
	OwnerName string `form:"owner_name" validate:"omitempty,max=100"`
	StartDate string `form:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date" validate:"omitempty,datetime=2006-01-02"`
	ExactDate string `form:"exact_date" validate:"omitempty,datetime=2006-01-02"`
	Page      int    `form:"page" validate:"omitempty,min=1"`
	PerPage   int    `form:"per_page" validate:"omitempty,min=1,max=100"`
}

// ExpiryExportRequest adds the output format to the report filters.
type ExpiryExportRequest struct {
	ExpiryReportRequest
	Format models.ExportFormat `form:"format" validate:"omitempty,oneof=csv pdf"`
}

// ExpiryRecordResponse is one row of the expiry report.
type ExpiryRecordResponse struct {
	Type        models.DocumentKind `json:"type"`
	OwnerName   string              `json:"owner_name"`
	OwnerMobile string              `json:"owner_mobile"`
	Identifier  string              `json:"identifier"`
	ExpiryDate  string              `json:"expiry_date"`
	CitizenID   int64               `json:"citizen_id"`
}

// ExpiryReportPage is a single page of the merged expiry report.
type ExpiryReportPage struct {
	Items      []ExpiryRecordResponse `json:"items"`
	Pagination models.Pagination      `json:"pagination"`
}
