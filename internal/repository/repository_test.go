package repository

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"coursehub/internal/model"
	"coursehub/migrations"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestDB runs the migrations against TEST_DATABASE_URL and empties every
// table. Tests using it are skipped when the variable is not set.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set, skip database integration test")
	}

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	require.NoError(t, err)
	source, err := iofs.New(migrations.FS, ".")
	require.NoError(t, err)
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	require.NoError(t, err)
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("failed to migrate: %v", err)
	}

	_, err = db.Exec(`TRUNCATE users, courses, lessons, outlines RESTART IDENTITY`)
	require.NoError(t, err)
	return db
}

func strPtr(s string) *string { return &s }

func TestCourseRepoOwnership(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewCourseRepository(db, zerolog.Nop())

	owner := uuid.New()
	other := uuid.New()
	_, err := db.Exec(`INSERT INTO users (id, email) VALUES ($1, $2)`, owner, "owner@example.com")
	require.NoError(t, err)

	c := &model.Course{Title: "Go", Description: strPtr("basics"), UserID: owner}
	require.NoError(t, repo.CreateCourse(ctx, c))
	assert.NotZero(t, c.ID)
	assert.False(t, c.CreatedAt.IsZero())

	err = repo.UpdateCourse(ctx, &model.Course{ID: c.ID, Title: "Hijacked", UserID: other})
	assert.ErrorIs(t, err, ErrNotOwner)

	err = repo.UpdateCourse(ctx, &model.Course{ID: c.ID + 100, Title: "Missing", UserID: owner})
	assert.ErrorIs(t, err, ErrNotFound)

	stored, err := repo.GetCourseByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Go", stored.Title)

	assert.ErrorIs(t, repo.DeleteCourse(ctx, c.ID, other), ErrNotOwner)

	list, err := repo.ListCourses(ctx, 100)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, owner, list[0].Owner.ID)
	require.NotNil(t, list[0].Owner.Email)
	assert.Equal(t, "owner@example.com", *list[0].Owner.Email)

	updated := &model.Course{ID: c.ID, Title: "Go 2", UserID: owner}
	require.NoError(t, repo.UpdateCourse(ctx, updated))
	assert.Equal(t, "Go 2", updated.Title)
	assert.Nil(t, updated.Description)
	assert.Equal(t, c.CreatedAt.Unix(), updated.CreatedAt.Unix())

	require.NoError(t, repo.DeleteCourse(ctx, c.ID, owner))
	gone, err := repo.GetCourseByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestLessonRepoOwnership(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	courses := NewCourseRepository(db, zerolog.Nop())
	lessons := NewLessonRepository(db, zerolog.Nop())

	owner := uuid.New()
	other := uuid.New()

	c := &model.Course{Title: "Course", UserID: owner}
	require.NoError(t, courses.CreateCourse(ctx, c))
	otherCourse := &model.Course{Title: "Other", UserID: other}
	require.NoError(t, courses.CreateCourse(ctx, otherCourse))

	first := &model.Lesson{CourseID: c.ID, Title: "One", Content: "1"}
	require.NoError(t, lessons.CreateLesson(ctx, first, owner))
	second := &model.Lesson{CourseID: c.ID, Title: "Two", Content: "2"}
	require.NoError(t, lessons.CreateLesson(ctx, second, owner))
	foreign := &model.Lesson{CourseID: otherCourse.ID, Title: "Foreign", Content: "x"}
	require.NoError(t, lessons.CreateLesson(ctx, foreign, other))

	assert.ErrorIs(t, lessons.CreateLesson(ctx, &model.Lesson{CourseID: c.ID, Title: "t", Content: "c"}, other), ErrNotOwner)
	assert.ErrorIs(t, lessons.CreateLesson(ctx, &model.Lesson{CourseID: 9999, Title: "t", Content: "c"}, owner), ErrNotOwner)

	list, err := lessons.ListLessonsByCourseID(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	// Owning course c does not allow editing a lesson of another course.
	err = lessons.UpdateLesson(ctx, &model.Lesson{ID: foreign.ID, CourseID: c.ID, Title: "x", Content: "y"}, owner)
	assert.ErrorIs(t, err, ErrNotOwner)
	err = lessons.UpdateLesson(ctx, &model.Lesson{ID: 9999, CourseID: c.ID, Title: "x", Content: "y"}, owner)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, lessons.DeleteLesson(ctx, first.ID, other), ErrNotOwner)
	assert.ErrorIs(t, lessons.DeleteLesson(ctx, 9999, owner), ErrNotFound)
	still, err := lessons.GetLessonByID(ctx, first.ID)
	require.NoError(t, err)
	assert.NotNil(t, still)

	require.NoError(t, courses.DeleteCourse(ctx, c.ID, owner))
	orphans, err := lessons.ListLessonsByCourseID(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, orphans, 2)
	assert.ErrorIs(t, lessons.DeleteLesson(ctx, first.ID, owner), ErrNotOwner)
}

func TestOutlineRepo(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewOutlineRepository(db, zerolog.Nop())

	for i := 0; i < 12; i++ {
		require.NoError(t, repo.CreateOutline(ctx, &model.Outline{Title: "old", Content: "c"}))
	}
	o := &model.Outline{Title: "T", Content: "C"}
	require.NoError(t, repo.CreateOutline(ctx, o))
	assert.Nil(t, o.Description)

	list, err := repo.ListRecentOutlines(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 10)
	assert.Equal(t, o.ID, list[0].ID)

	assert.ErrorIs(t, repo.UpdateOutline(ctx, &model.Outline{ID: 9999, Title: "x", Content: "y"}), ErrNotFound)
	assert.ErrorIs(t, repo.DeleteOutline(ctx, 9999), ErrNotFound)

	o.Description = strPtr("d")
	require.NoError(t, repo.UpdateOutline(ctx, o))
	assert.Equal(t, "d", *o.Description)

	require.NoError(t, repo.DeleteOutline(ctx, o.ID))
	gone, err := repo.GetOutlineByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}
