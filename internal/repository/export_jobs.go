package repository

import (
	"context"
	"fmt"

	"github.com/illegalcall/shot-tracker/internal/models"
)

const exportJobColumns = `id, user_id, format, status, file_path, created_at`

func (r *Repository) CreateExportJob(ctx context.Context, userID string, format models.ExportFormat) (*models.ExportJob, error) {
	var job models.ExportJob
	err := r.db.GetContext(ctx, &job,
		`INSERT INTO export_jobs (user_id, format, status) VALUES ($1, $2, $3) RETURNING `+exportJobColumns,
		userID, format, models.StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("create export job: %w", err)
	}
	return &job, nil
}

func (r *Repository) GetExportJob(ctx context.Context, userID string, id int) (*models.ExportJob, error) {
	var job models.ExportJob
	err := r.db.GetContext(ctx, &job,
		`SELECT `+exportJobColumns+` FROM export_jobs WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("get export job: %w", notFound(err))
	}
	return &job, nil
}

// UpdateExportJob records the outcome of a job. filePath is nil for failures.
func (r *Repository) UpdateExportJob(ctx context.Context, id int, status string, filePath *string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE export_jobs SET status = $1, file_path = $2 WHERE id = $3`,
		status, filePath, id,
	)
	if err != nil {
		return fmt.Errorf("update export job: %w", err)
	}
	return nil
}
