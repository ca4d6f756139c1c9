package database

import (
	"context"
	"errors"

	"github.com/clipzone/clipzone/internal/apperr"
	"github.com/clipzone/clipzone/pkg/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const clipColumns = `id, creator_id, clipper_id, title, media_ref, views,
       status, cpm_snapshot, earnings, created_at, updated_at`

func scanClip(row pgx.Row) (*models.Clip, error) {
	var c models.Clip
	err := row.Scan(
		&c.ID, &c.CreatorID, &c.ClipperID, &c.Title, &c.MediaRef, &c.Views,
		&c.Status, &c.CPMSnapshot, &c.Earnings, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateClip creates a new clip record
func (r *Repository) CreateClip(ctx context.Context, clip *models.Clip) error {
	if clip.ID == "" {
		clip.ID = uuid.New().String()
	}

	query := `
		INSERT INTO clips (id, creator_id, clipper_id, title, media_ref, views, status, cpm_snapshot, earnings)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		clip.ID, clip.CreatorID, clip.ClipperID, clip.Title, clip.MediaRef,
		clip.Views, clip.Status, clip.CPMSnapshot, clip.Earnings,
	).Scan(&clip.CreatedAt, &clip.UpdatedAt)

	if err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "failed to create clip", err)
	}

	return nil
}

// GetClip retrieves a clip by ID
func (r *Repository) GetClip(ctx context.Context, id string) (*models.Clip, error) {
	query := `SELECT ` + clipColumns + ` FROM clips WHERE id = $1`

	clip, err := scanClip(r.db.Pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.KindNotFound, "clip not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "failed to get clip", err)
	}

	return clip, nil
}

// ModerateClip persists a moderation decision and, when credit is set,
// credits the clipper's balance in the same transaction. The clip update is
// guarded on the status observed when the decision was made: if another
// moderation won the race the update matches zero rows and the caller gets
// a conflict, so a credit can never be applied twice for one approval.
func (r *Repository) ModerateClip(ctx context.Context, clip *models.Clip, prior models.ClipStatus, credit bool) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "failed to begin moderation", err)
	}
	defer tx.Rollback(ctx)

	updateClip := `
		UPDATE clips
		SET status = $2, views = $3, cpm_snapshot = $4, earnings = $5, updated_at = now()
		WHERE id = $1 AND status = $6
		RETURNING updated_at
	`

	err = tx.QueryRow(ctx, updateClip,
		clip.ID, clip.Status, clip.Views, clip.CPMSnapshot, clip.Earnings, prior,
	).Scan(&clip.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.New(apperr.KindConflict, "clip was modified concurrently")
	}
	if err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "failed to update clip", err)
	}

	if credit {
		// Atomic add, never a read-then-write of a cached balance.
		creditBalance := `UPDATE accounts SET balance = balance + $2, updated_at = now() WHERE id = $1`
		if _, err := tx.Exec(ctx, creditBalance, clip.ClipperID, clip.Earnings); err != nil {
			return apperr.Wrap(apperr.KindUnavailable, "failed to credit balance", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "failed to commit moderation", err)
	}

	return nil
}

// ListClipsByCreator retrieves all clips submitted for a creator
func (r *Repository) ListClipsByCreator(ctx context.Context, creatorID string) ([]*models.Clip, error) {
	query := `SELECT ` + clipColumns + ` FROM clips WHERE creator_id = $1 ORDER BY created_at DESC`
	return r.listClips(ctx, query, creatorID)
}

// ListClipsByClipper retrieves all clips owned by a clipper
func (r *Repository) ListClipsByClipper(ctx context.Context, clipperID string) ([]*models.Clip, error) {
	query := `SELECT ` + clipColumns + ` FROM clips WHERE clipper_id = $1 ORDER BY created_at DESC`
	return r.listClips(ctx, query, clipperID)
}

func (r *Repository) listClips(ctx context.Context, query string, arg interface{}) ([]*models.Clip, error) {
	rows, err := r.db.Pool.Query(ctx, query, arg)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "failed to list clips", err)
	}
	defer rows.Close()

	var clips []*models.Clip
	for rows.Next() {
		clip, err := scanClip(rows)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindUnavailable, "failed to scan clip", err)
		}
		clips = append(clips, clip)
	}

	return clips, nil
}
