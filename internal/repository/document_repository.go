package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/vehicle-records-api/internal/models"
)

// DocumentRepository reads expiry-bearing documents together with their owner.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository constructs a DocumentRepository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Find returns the rows of src matching pred ordered by document id.
// Owners are LEFT JOINed so a broken vehicle or citizen link surfaces as NULL
// owner columns instead of silently hiding the document.
func (r *DocumentRepository) Find(ctx context.Context, src models.DocumentSource, pred models.DocumentPredicate) ([]models.DocumentRow, error) {
	query, args := buildDocumentQuery(src, pred)
	var rows []models.DocumentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("find %s documents: %w", strings.ToLower(string(src.Kind)), err)
	}
	return rows, nil
}

func buildDocumentQuery(src models.DocumentSource, pred models.DocumentPredicate) (string, []interface{}) {
	dateCol := "d." + src.DateColumn
	identifier := "d." + src.IdentifierColumn
	from := fmt.Sprintf("FROM %s d LEFT JOIN citizens c ON c.id = d.citizen_id", src.Table)
	if src.VehicleLinked {
		identifier = "v." + src.IdentifierColumn
		from = fmt.Sprintf("FROM %s d LEFT JOIN vehicles v ON v.id = d.vehicle_id LEFT JOIN citizens c ON c.id = v.citizen_id", src.Table)
	}

	args := []interface{}{}
	conditions := []string{dateCol + " IS NOT NULL"}

	if pred.VehicleNumber != "" && src.VehicleLinked {
		conditions = append(conditions, fmt.Sprintf("LOWER(v.registration_no) LIKE $%d", len(args)+1))
		args = append(args, likePattern(pred.VehicleNumber))
	}
	if pred.OwnerName != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(c.name) LIKE $%d", len(args)+1))
		args = append(args, likePattern(pred.OwnerName))
	}
	if pred.ExactDate != nil {
		conditions = append(conditions, fmt.Sprintf("%s::date = $%d::date", dateCol, len(args)+1))
		args = append(args, pred.ExactDate.Format(models.DateLayout))
	} else {
		if pred.StartDate != nil {
			conditions = append(conditions, fmt.Sprintf("%s::date >= $%d::date", dateCol, len(args)+1))
			args = append(args, pred.StartDate.Format(models.DateLayout))
		}
		if pred.EndDate != nil {
			conditions = append(conditions, fmt.Sprintf("%s::date <= $%d::date", dateCol, len(args)+1))
			args = append(args, pred.EndDate.Format(models.DateLayout))
		}
	}

	query := fmt.Sprintf(`SELECT d.id, c.id AS citizen_id, c.name AS owner_name, c.mobile AS owner_mobile, %s AS identifier, %s::date AS expiry_date
        %s WHERE %s ORDER BY d.id ASC`, identifier, dateCol, from, strings.Join(conditions, " AND "))
	return query, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a case-insensitive substring pattern with LIKE
// metacharacters in the needle escaped.
func likePattern(needle string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(needle))) + "%"
}
