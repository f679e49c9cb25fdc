package repository

import (
	"context"
	"fmt"

	"github.com/illegalcall/shot-tracker/internal/models"
)

const profileColumns = `id, email, full_name, timezone, created_at, updated_at`

func (r *Repository) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	err := r.db.GetContext(ctx, &p, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", notFound(err))
	}
	return &p, nil
}

// EnsureProfile creates the profile on first sign-in. created reports whether
// the row was inserted by this call.
func (r *Repository) EnsureProfile(ctx context.Context, userID, email string) (p *models.Profile, created bool, err error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (id, email) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
		userID, email,
	)
	if err != nil {
		return nil, false, fmt.Errorf("create profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("create profile: %w", err)
	}

	p, err = r.GetProfile(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return p, n > 0, nil
}

// UpdateProfile changes the fields that are set on req and returns the stored
// profile.
func (r *Repository) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.Profile, error) {
	var p models.Profile
	err := r.db.GetContext(ctx, &p,
		`UPDATE profiles
		SET full_name = COALESCE($2, full_name), timezone = COALESCE($3, timezone), updated_at = NOW()
		WHERE id = $1
		RETURNING `+profileColumns,
		userID, req.FullName, req.Timezone,
	)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", notFound(err))
	}
	return &p, nil
}

// CompleteOnboarding stores the user's name and first medication in one
// transaction.
func (r *Repository) CompleteOnboarding(ctx context.Context, userID, fullName string, med *models.Medication) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin onboarding: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx,
		`UPDATE profiles SET full_name = $2, updated_at = NOW() WHERE id = $1`,
		userID, fullName,
	)
	if err != nil {
		return fmt.Errorf("update profile name: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update profile name: %w", ErrNotFound)
	}

	med.UserID = userID
	if err := insertMedication(ctx, tx, med); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit onboarding: %w", err)
	}
	return nil
}
