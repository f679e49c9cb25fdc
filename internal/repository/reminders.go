package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/illegalcall/shot-tracker/internal/models"
)

const reminderColumns = `id, user_id, medication_id, reminder_time, hours_before, is_active, created_at, updated_at`

func (r *Repository) ListReminders(ctx context.Context, userID string) ([]models.Reminder, error) {
	reminders := []models.Reminder{}
	err := r.db.SelectContext(ctx, &reminders,
		`SELECT `+reminderColumns+` FROM reminders
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY reminder_time ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	return reminders, nil
}

func (r *Repository) CreateReminder(ctx context.Context, rem *models.Reminder) error {
	rem.ID = uuid.NewString()
	err := r.db.GetContext(ctx, rem,
		`INSERT INTO reminders (id, user_id, medication_id, reminder_time, hours_before, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING `+reminderColumns,
		rem.ID, rem.UserID, rem.MedicationID, rem.ReminderTime, rem.HoursBefore,
	)
	if err != nil {
		return fmt.Errorf("create reminder: %w", err)
	}
	return nil
}

func (r *Repository) DeactivateReminder(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reminders SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND is_active = TRUE`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("deactivate reminder: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("deactivate reminder: %w", err)
	} else if n == 0 {
		return fmt.Errorf("deactivate reminder: %w", ErrNotFound)
	}
	return nil
}
