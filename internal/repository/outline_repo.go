package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"coursehub/internal/model"

	"github.com/rs/zerolog"
)

type OutlineRepository interface {
	ListRecentOutlines(ctx context.Context, limit int) ([]model.Outline, error)
	GetOutlineByID(ctx context.Context, outlineID int64) (*model.Outline, error)
	CreateOutline(ctx context.Context, o *model.Outline) error
	UpdateOutline(ctx context.Context, o *model.Outline) error
	DeleteOutline(ctx context.Context, outlineID int64) error
}

type outlineRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewOutlineRepository(db *sql.DB, logger zerolog.Logger) OutlineRepository {
	return &outlineRepository{
		db:     db,
		logger: logger.With().Str("repository", "outline").Logger(),
	}
}

func (r *outlineRepository) ListRecentOutlines(ctx context.Context, limit int) ([]model.Outline, error) {
	query := `
		SELECT id, title, description, content, created_at
		FROM outlines
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query outlines: %w", err)
	}
	defer rows.Close()

	outlines := []model.Outline{}
	for rows.Next() {
		var o model.Outline
		if err := rows.Scan(&o.ID, &o.Title, &o.Description, &o.Content, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outline row: %w", err)
		}
		outlines = append(outlines, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	r.logger.Debug().Int("count", len(outlines)).Msg("Listed outlines")
	return outlines, nil
}

func (r *outlineRepository) GetOutlineByID(ctx context.Context, outlineID int64) (*model.Outline, error) {
	query := `
		SELECT id, title, description, content, created_at
		FROM outlines
		WHERE id = $1
	`
	var o model.Outline
	err := r.db.QueryRowContext(ctx, query, outlineID).Scan(&o.ID, &o.Title, &o.Description, &o.Content, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get outline: %w", err)
	}
	return &o, nil
}

func (r *outlineRepository) CreateOutline(ctx context.Context, o *model.Outline) error {
	query := `
		INSERT INTO outlines (title, description, content)
		VALUES ($1, $2, $3)
		RETURNING id, title, description, content, created_at
	`
	err := r.db.QueryRowContext(ctx, query, o.Title, o.Description, o.Content).
		Scan(&o.ID, &o.Title, &o.Description, &o.Content, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert outline: %w", err)
	}
	return nil
}

func (r *outlineRepository) UpdateOutline(ctx context.Context, o *model.Outline) error {
	query := `
		UPDATE outlines
		SET title = $1, description = $2, content = $3
		WHERE id = $4
		RETURNING id, title, description, content, created_at
	`
	err := r.db.QueryRowContext(ctx, query, o.Title, o.Description, o.Content, o.ID).
		Scan(&o.ID, &o.Title, &o.Description, &o.Content, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update outline: %w", err)
	}
	return nil
}

func (r *outlineRepository) DeleteOutline(ctx context.Context, outlineID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM outlines WHERE id = $1`, outlineID)
	if err != nil {
		return fmt.Errorf("failed to delete outline: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
