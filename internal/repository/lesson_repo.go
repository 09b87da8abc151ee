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

type LessonRepository interface {
	ListLessonsByCourseID(ctx context.Context, courseID int64) ([]model.Lesson, error)
	GetLessonByID(ctx context.Context, lessonID int64) (*model.Lesson, error)
	// CreateLesson inserts l if its course is owned by userID
	CreateLesson(ctx context.Context, l *model.Lesson, userID uuid.UUID) error
	// UpdateLesson updates title and content if l.CourseID is owned by userID
	// and the lesson belongs to that course
	UpdateLesson(ctx context.Context, l *model.Lesson, userID uuid.UUID) error
	DeleteLesson(ctx context.Context, lessonID int64, userID uuid.UUID) error
}

type lessonRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewLessonRepository(db *sql.DB, logger zerolog.Logger) LessonRepository {
	return &lessonRepository{
		db:     db,
		logger: logger.With().Str("repository", "lesson").Logger(),
	}
}

func (r *lessonRepository) ListLessonsByCourseID(ctx context.Context, courseID int64) ([]model.Lesson, error) {
	query := `
		SELECT id, course_id, title, content, created_at
		FROM lessons
		WHERE course_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons by course: %w", err)
	}
	defer rows.Close()

	lessons := []model.Lesson{}
	for rows.Next() {
		var l model.Lesson
		if err := rows.Scan(&l.ID, &l.CourseID, &l.Title, &l.Content, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lesson row: %w", err)
		}
		lessons = append(lessons, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return lessons, nil
}

func (r *lessonRepository) GetLessonByID(ctx context.Context, lessonID int64) (*model.Lesson, error) {
	query := `
		SELECT id, course_id, title, content, created_at
		FROM lessons
		WHERE id = $1
	`
	var l model.Lesson
	err := r.db.QueryRowContext(ctx, query, lessonID).Scan(&l.ID, &l.CourseID, &l.Title, &l.Content, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	return &l, nil
}

func (r *lessonRepository) CreateLesson(ctx context.Context, l *model.Lesson, userID uuid.UUID) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := checkCourseOwner(ctx, tx, l.CourseID, userID); err != nil {
			return asNotOwner(err)
		}
		query := `
			INSERT INTO lessons (course_id, title, content)
			VALUES ($1, $2, $3)
			RETURNING id, course_id, title, content, created_at
		`
		err := tx.QueryRowContext(ctx, query, l.CourseID, l.Title, l.Content).
			Scan(&l.ID, &l.CourseID, &l.Title, &l.Content, &l.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert lesson: %w", err)
		}
		return nil
	})
}

func (r *lessonRepository) UpdateLesson(ctx context.Context, l *model.Lesson, userID uuid.UUID) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := checkCourseOwner(ctx, tx, l.CourseID, userID); err != nil {
			return asNotOwner(err)
		}

		var currentCourseID int64
		err := tx.QueryRowContext(ctx, `SELECT course_id FROM lessons WHERE id = $1 FOR UPDATE`, l.ID).Scan(&currentCourseID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to lock lesson: %w", err)
		}
		if currentCourseID != l.CourseID {
			r.logger.Warn().
				Int64("lesson_id", l.ID).
				Int64("course_id", l.CourseID).
				Int64("actual_course_id", currentCourseID).
				Msg("Lesson update targeted a lesson from another course")
			return ErrNotOwner
		}

		query := `
			UPDATE lessons
			SET title = $1, content = $2
			WHERE id = $3
			RETURNING id, course_id, title, content, created_at
		`
		err = tx.QueryRowContext(ctx, query, l.Title, l.Content, l.ID).
			Scan(&l.ID, &l.CourseID, &l.Title, &l.Content, &l.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to update lesson: %w", err)
		}
		return nil
	})
}

// DeleteLesson reports ErrNotOwner when the parent course is missing, since
// ownership can then not be established.
func (r *lessonRepository) DeleteLesson(ctx context.Context, lessonID int64, userID uuid.UUID) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			SELECT c.user_id
			FROM lessons l
			LEFT JOIN courses c ON c.id = l.course_id
			WHERE l.id = $1
			FOR UPDATE OF l
		`
		var owner uuid.NullUUID
		if err := tx.QueryRowContext(ctx, query, lessonID).Scan(&owner); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to check lesson owner: %w", err)
		}
		if !owner.Valid || owner.UUID != userID {
			return ErrNotOwner
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM lessons WHERE id = $1`, lessonID); err != nil {
			return fmt.Errorf("failed to delete lesson: %w", err)
		}
		return nil
	})
}

// asNotOwner folds a missing course into ErrNotOwner: a lesson may only be
// written under a course the caller can prove they own.
func asNotOwner(err error) error {
	if errors.Is(err, ErrNotFound) {
		return ErrNotOwner
	}
	return err
}
