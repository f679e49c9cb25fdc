package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/illegalcall/shot-tracker/internal/models"
)

const medicationColumns = `id, user_id, name, dosage, unit, frequency, frequency_days,
	preferred_injection_site, is_active, created_at, updated_at`

// ListActiveMedications returns the user's active medications, oldest first.
func (r *Repository) ListActiveMedications(ctx context.Context, userID string) ([]models.Medication, error) {
	meds := []models.Medication{}
	err := r.db.SelectContext(ctx, &meds,
		`SELECT `+medicationColumns+` FROM medications
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list medications: %w", err)
	}
	return meds, nil
}

// ListAllMedications includes deactivated medications, which old injection
// logs may still reference.
func (r *Repository) ListAllMedications(ctx context.Context, userID string) ([]models.Medication, error) {
	meds := []models.Medication{}
	err := r.db.SelectContext(ctx, &meds,
		`SELECT `+medicationColumns+` FROM medications WHERE user_id = $1 ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list all medications: %w", err)
	}
	return meds, nil
}

func (r *Repository) GetMedication(ctx context.Context, userID, id string) (*models.Medication, error) {
	var m models.Medication
	err := r.db.GetContext(ctx, &m,
		`SELECT `+medicationColumns+` FROM medications WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("get medication: %w", notFound(err))
	}
	return &m, nil
}

func (r *Repository) HasActiveMedication(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM medications WHERE user_id = $1 AND is_active = TRUE)`,
		userID,
	)
	if err != nil {
		return false, fmt.Errorf("check medications: %w", err)
	}
	return exists, nil
}

// CreateMedication assigns the id and timestamps of m.
func (r *Repository) CreateMedication(ctx context.Context, m *models.Medication) error {
	return insertMedication(ctx, r.db, m)
}

func insertMedication(ctx context.Context, q sqlx.QueryerContext, m *models.Medication) error {
	m.ID = uuid.NewString()
	m.IsActive = true
	err := sqlx.GetContext(ctx, q, m,
		`INSERT INTO medications
			(id, user_id, name, dosage, unit, frequency, frequency_days, preferred_injection_site, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)
		RETURNING `+medicationColumns,
		m.ID, m.UserID, m.Name, m.Dosage, m.Unit, m.Frequency, m.FrequencyDays, m.PreferredSite,
	)
	if err != nil {
		return fmt.Errorf("create medication: %w", err)
	}
	return nil
}

// UpdateMedication replaces the editable fields of an active medication.
func (r *Repository) UpdateMedication(ctx context.Context, m *models.Medication) error {
	err := r.db.GetContext(ctx, m,
		`UPDATE medications
		SET name = $3, dosage = $4, unit = $5, frequency = $6, frequency_days = $7,
			preferred_injection_site = $8, updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND is_active = TRUE
		RETURNING `+medicationColumns,
		m.ID, m.UserID, m.Name, m.Dosage, m.Unit, m.Frequency, m.FrequencyDays, m.PreferredSite,
	)
	if err != nil {
		return fmt.Errorf("update medication: %w", notFound(err))
	}
	return nil
}

// DeactivateMedication hides a medication without deleting its history.
func (r *Repository) DeactivateMedication(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE medications SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND is_active = TRUE`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("deactivate medication: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate medication: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("deactivate medication: %w", ErrNotFound)
	}
	return nil
}
