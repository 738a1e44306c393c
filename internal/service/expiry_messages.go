package service

import (
	"fmt"
	"strings"

	"github.com/noah-isme/vehicle-records-api/internal/models"
)

// reminderDateLayout renders dates as DD-MM-YYYY in outgoing messages.
const reminderDateLayout = "02-01-2006"

var reminderTemplates = map[models.DocumentKind]string{
	models.KindDrivingLicense: "Dear %s, your driving licence %s will expire on %s. Please renew it before the expiry date.",
	models.KindInsurance:      "Dear %s, the insurance for vehicle %s will expire on %s. Please renew it to stay covered.",
	models.KindPUCC:           "Dear %s, the PUC certificate for vehicle %s will expire on %s. Please get a fresh emission test done.",
	models.KindFitness:        "Dear %s, the fitness certificate for vehicle %s will expire on %s. Please schedule a fitness inspection.",
}

// ComposeReminder renders the reminder text for rec.
func ComposeReminder(rec models.ExpiryRecord) string {
	tmpl, ok := reminderTemplates[rec.Kind]
	if !ok {
		tmpl = "Dear %s, your " + strings.ToLower(string(rec.Kind)) + " %s will expire on %s. Please renew it in time."
	}
	identifier := rec.Identifier
	if identifier == "" {
		identifier = "on record"
	}
	return fmt.Sprintf(tmpl, rec.OwnerName, identifier, rec.ExpiryDate.Format(reminderDateLayout))
}

// NormalizePhone strips everything but digits and prefixes countryCode to
// bare national numbers. It returns "" when nothing dialable remains.
func NormalizePhone(raw, countryCode string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := strings.TrimLeft(b.String(), "0")
	if digits == "" {
		return ""
	}
	if countryCode == "" {
		return digits
	}
	if len(digits) == 10+len(countryCode) && strings.HasPrefix(digits, countryCode) {
		return digits
	}
	return countryCode + digits
}
