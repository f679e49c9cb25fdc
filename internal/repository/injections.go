package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/illegalcall/shot-tracker/internal/models"
)

const injectionColumns = `id, user_id, medication_id, injection_date, dosage, injection_site,
	notes, is_completed, created_at, updated_at`

// InjectionFilter narrows ListInjections. Zero values are ignored; From and
// To are inclusive.
type InjectionFilter struct {
	MedicationID string
	From         time.Time
	To           time.Time
	Limit        int
}

// ListInjections returns the user's logs, newest first.
func (r *Repository) ListInjections(ctx context.Context, userID string, f InjectionFilter) ([]models.InjectionLog, error) {
	where := []string{"user_id = $1"}
	args := []interface{}{userID}
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.MedicationID != "" {
		add("medication_id = $%d", f.MedicationID)
	}
	if !f.From.IsZero() {
		add("injection_date >= $%d", f.From)
	}
	if !f.To.IsZero() {
		add("injection_date <= $%d", f.To)
	}

	query := `SELECT ` + injectionColumns + ` FROM injection_logs WHERE ` +
		strings.Join(where, " AND ") +
		` ORDER BY injection_date DESC, created_at DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	logs := []models.InjectionLog{}
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, fmt.Errorf("list injections: %w", err)
	}
	return logs, nil
}

// CreateInjection assigns the id and timestamps of l.
func (r *Repository) CreateInjection(ctx context.Context, l *models.InjectionLog) error {
	l.ID = uuid.NewString()
	err := r.db.GetContext(ctx, l,
		`INSERT INTO injection_logs
			(id, user_id, medication_id, injection_date, dosage, injection_site, notes, is_completed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+injectionColumns,
		l.ID, l.UserID, l.MedicationID, l.InjectionDate, l.Dosage, l.InjectionSite, l.Notes, l.IsCompleted,
	)
	if err != nil {
		return fmt.Errorf("create injection: %w", err)
	}
	return nil
}
