package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"coursehub/internal/database"
	"coursehub/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CourseRepository defines the interface for interacting with course data
type CourseRepository interface {
	// ListCourses returns up to limit courses joined with their owners, newest first
	ListCourses(ctx context.Context, limit int) ([]model.CourseWithOwner, error)
	GetCourseByID(ctx context.Context, courseID int64) (*model.Course, error)
	CreateCourse(ctx context.Context, c *model.Course) error
	// UpdateCourse updates title and description of a course owned by c.UserID
	UpdateCourse(ctx context.Context, c *model.Course) error
	DeleteCourse(ctx context.Context, courseID int64, userID uuid.UUID) error
}

type courseRepo struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewCourseRepository(db *sql.DB, logger zerolog.Logger) CourseRepository {
	return &courseRepo{
		db:     db,
		logger: logger.With().Str("repository", "course").Logger(),
	}
}

func (r *courseRepo) ListCourses(ctx context.Context, limit int) ([]model.CourseWithOwner, error) {
	query := `
		SELECT c.id, c.title, c.description, c.user_id, c.created_at, u.email
		FROM courses c
		LEFT JOIN users u ON u.id = c.user_id
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	courses := []model.CourseWithOwner{}
	for rows.Next() {
		var c model.CourseWithOwner
		var email sql.NullString
		if err := rows.Scan(
			&c.ID,
			&c.Title,
			&c.Description,
			&c.UserID,
			&c.CreatedAt,
			&email,
		); err != nil {
			return nil, fmt.Errorf("failed to scan course row: %w", err)
		}
		c.Owner.ID = c.UserID
		if email.Valid {
			c.Owner.Email = &email.String
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	r.logger.Debug().Int("count", len(courses)).Msg("Listed courses")
	return courses, nil
}

// GetCourseByID returns nil when the course does not exist
func (r *courseRepo) GetCourseByID(ctx context.Context, courseID int64) (*model.Course, error) {
	query := `
		SELECT id, title, description, user_id, created_at
		FROM courses
		WHERE id = $1
	`
	var c model.Course
	err := r.db.QueryRowContext(ctx, query, courseID).Scan(
		&c.ID,
		&c.Title,
		&c.Description,
		&c.UserID,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return &c, nil
}

// CreateCourse inserts a new course and fills in the assigned id and timestamp
func (r *courseRepo) CreateCourse(ctx context.Context, c *model.Course) error {
	query := `
		INSERT INTO courses (title, description, user_id)
		VALUES ($1, $2, $3)
		RETURNING id, title, description, user_id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, c.Title, c.Description, c.UserID).
		Scan(&c.ID, &c.Title, &c.Description, &c.UserID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert course: %w", err)
	}
	return nil
}

func (r *courseRepo) UpdateCourse(ctx context.Context, c *model.Course) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := checkCourseOwner(ctx, tx, c.ID, c.UserID); err != nil {
			return err
		}
		query := `
			UPDATE courses
			SET title = $1, description = $2
			WHERE id = $3 AND user_id = $4
			RETURNING id, title, description, user_id, created_at
		`
		err := tx.QueryRowContext(ctx, query, c.Title, c.Description, c.ID, c.UserID).
			Scan(&c.ID, &c.Title, &c.Description, &c.UserID, &c.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to update course: %w", err)
		}
		return nil
	})
}

// DeleteCourse removes the course only. Its lessons are left in place.
func (r *courseRepo) DeleteCourse(ctx context.Context, courseID int64, userID uuid.UUID) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := checkCourseOwner(ctx, tx, courseID, userID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM courses WHERE id = $1 AND user_id = $2`, courseID, userID)
		if err != nil {
			return fmt.Errorf("failed to delete course: %w", err)
		}
		return nil
	})
}

// checkCourseOwner locks the course row for the rest of the transaction and
// reports ErrNotFound or ErrNotOwner.
func checkCourseOwner(ctx context.Context, tx *sql.Tx, courseID int64, userID uuid.UUID) error {
	var owner uuid.UUID
	err := tx.QueryRowContext(ctx, `SELECT user_id FROM courses WHERE id = $1 FOR UPDATE`, courseID).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to check course owner: %w", err)
	}
	if owner != userID {
		return ErrNotOwner
	}
	return nil
}
