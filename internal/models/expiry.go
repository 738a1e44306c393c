package models

import "time"

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// DocumentRow is one document joined with its (possibly missing) owner.
type DocumentRow struct {
	ID          int64     `db:"id"`
	CitizenID   *int64    `db:"citizen_id"`
	OwnerName   *string   `db:"owner_name"`
	OwnerMobile *string   `db:"owner_mobile"`
	Identifier  *string   `db:"identifier"`
	ExpiryDate  time.Time `db:"expiry_date"`
}

// DocumentPredicate narrows a single document lookup. Zero values mean "no filter".
type DocumentPredicate struct {
	VehicleNumber string
	OwnerName     string
	ExactDate     *time.Time
	StartDate     *time.Time
	EndDate       *time.Time
}

// ExpiryRecord is the kind-agnostic shape every document row is normalised into.
type ExpiryRecord struct {
	Kind        DocumentKind
	OwnerName   string
	OwnerMobile string
	Identifier  string
	ExpiryDate  time.Time
	CitizenID   int64
}

// ReportQuery captures the filters and window of an expiry report request.
type ReportQuery struct {
	VehicleNumber string
	OwnerName     string
	ExactDate     *time.Time
	StartDate     *time.Time
	EndDate       *time.Time
	Page          int
	PerPage       int
}

// ExportFormat enumerates supported report export formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ScanKindSummary counts the outcome of one document kind within a reminder scan.
type ScanKindSummary struct {
	Kind     DocumentKind `json:"kind"`
	Selected int          `json:"selected"`
	Skipped  int          `json:"skipped"`
	Sent     int          `json:"sent"`
	Failed   int          `json:"failed"`
	Error    string       `json:"error,omitempty"`
}

// ScanSummary reports a full reminder scan.
type ScanSummary struct {
	RunID      string            `json:"run_id"`
	Today      time.Time         `json:"today"`
	Target     time.Time         `json:"target"`
	Kinds      []ScanKindSummary `json:"kinds"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
}

// Totals sums the per-kind counters.
func (s ScanSummary) Totals() (sent, failed, skipped int) {
	for _, k := range s.Kinds {
		sent += k.Sent
		failed += k.Failed
		skipped += k.Skipped
	}
	return sent, failed, skipped
}
