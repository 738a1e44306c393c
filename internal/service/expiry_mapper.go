package service

import (
	"strings"
	"time"

	"github.com/noah-isme/vehicle-records-api/internal/models"
)

// MapExpiryRecord normalises a document row into an ExpiryRecord. It reports
// false when the owner cannot be resolved (no linked citizen or a blank
// name); such rows are dropped, never rendered with empty owners.
func MapExpiryRecord(row models.DocumentRow, src models.DocumentSource) (models.ExpiryRecord, bool) {
	if row.CitizenID == nil || row.OwnerName == nil {
		return models.ExpiryRecord{}, false
	}
	name := strings.TrimSpace(*row.OwnerName)
	if name == "" {
		return models.ExpiryRecord{}, false
	}
	return models.ExpiryRecord{
		Kind:        src.Kind,
		OwnerName:   name,
		OwnerMobile: strings.TrimSpace(deref(row.OwnerMobile)),
		Identifier:  strings.TrimSpace(deref(row.Identifier)),
		ExpiryDate:  CalendarDate(row.ExpiryDate),
		CitizenID:   *row.CitizenID,
	}, true
}

// CalendarDate strips the time of day, keeping the date as seen in t's own location.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
