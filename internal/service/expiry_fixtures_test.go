package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/noah-isme/vehicle-records-api/internal/models"
	appErrors "github.com/noah-isme/vehicle-records-api/pkg/errors"
)

type findCall struct {
	kind models.DocumentKind
	pred models.DocumentPredicate
}

// stubDocumentFinder serves fixed rows per kind, applying the date part of
// the predicate the way the database would.
type stubDocumentFinder struct {
	rows  map[models.DocumentKind][]models.DocumentRow
	errs  map[models.DocumentKind]error
	calls []findCall
}

func (s *stubDocumentFinder) Find(_ context.Context, src models.DocumentSource, pred models.DocumentPredicate) ([]models.DocumentRow, error) {
	s.calls = append(s.calls, findCall{kind: src.Kind, pred: pred})
	if err := s.errs[src.Kind]; err != nil {
		return nil, err
	}
	var out []models.DocumentRow
	for _, row := range s.rows[src.Kind] {
		day := CalendarDate(row.ExpiryDate)
		if pred.ExactDate != nil && !day.Equal(*pred.ExactDate) {
			continue
		}
		if pred.StartDate != nil && day.Before(*pred.StartDate) {
			continue
		}
		if pred.EndDate != nil && day.After(*pred.EndDate) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *stubDocumentFinder) kindsQueried() []models.DocumentKind {
	kinds := make([]models.DocumentKind, 0, len(s.calls))
	for _, c := range s.calls {
		kinds = append(kinds, c.kind)
	}
	return kinds
}

type sentMessage struct {
	phone   string
	message string
}

type recordingSender struct {
	mu     sync.Mutex
	sent   []sentMessage
	reject map[string]bool
}

func (r *recordingSender) SendTextMessage(_ context.Context, phone, message string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reject[phone] {
		return false
	}
	r.sent = append(r.sent, sentMessage{phone: phone, message: message})
	return true
}

type memoryCacheRepo struct {
	store map[string][]byte
	sets  int
}

func (m *memoryCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	payload, ok := m.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (m *memoryCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if m.store == nil {
		m.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.store[key] = payload
	m.sets++
	return nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dayPtr(y int, m time.Month, d int) *time.Time {
	v := day(y, m, d)
	return &v
}

func ownedRow(id, citizenID int64, name, mobile, identifier string, expiry time.Time) models.DocumentRow {
	return models.DocumentRow{
		ID:          id,
		CitizenID:   &citizenID,
		OwnerName:   &name,
		OwnerMobile: &mobile,
		Identifier:  &identifier,
		ExpiryDate:  expiry,
	}
}

func orphanRow(id int64, identifier string, expiry time.Time) models.DocumentRow {
	return models.DocumentRow{ID: id, Identifier: &identifier, ExpiryDate: expiry}
}
