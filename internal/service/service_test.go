package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"coursehub/internal/model"
	"coursehub/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCourseRepo struct {
	courses map[int64]*model.Course
	nextID  int64
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: map[int64]*model.Course{}}
}

func (f *fakeCourseRepo) ListCourses(_ context.Context, limit int) ([]model.CourseWithOwner, error) {
	var out []model.CourseWithOwner
	for _, c := range f.courses {
		out = append(out, model.CourseWithOwner{Course: *c, Owner: model.Owner{ID: c.UserID}})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeCourseRepo) GetCourseByID(_ context.Context, id int64) (*model.Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCourseRepo) CreateCourse(_ context.Context, c *model.Course) error {
	f.nextID++
	c.ID = f.nextID
	c.CreatedAt = time.Now()
	cp := *c
	f.courses[c.ID] = &cp
	return nil
}

func (f *fakeCourseRepo) owned(id int64, userID uuid.UUID) error {
	c, ok := f.courses[id]
	if !ok {
		return repository.ErrNotFound
	}
	if c.UserID != userID {
		return repository.ErrNotOwner
	}
	return nil
}

func (f *fakeCourseRepo) UpdateCourse(_ context.Context, c *model.Course) error {
	if err := f.owned(c.ID, c.UserID); err != nil {
		return err
	}
	stored := f.courses[c.ID]
	stored.Title, stored.Description = c.Title, c.Description
	c.CreatedAt = stored.CreatedAt
	return nil
}

func (f *fakeCourseRepo) DeleteCourse(_ context.Context, id int64, userID uuid.UUID) error {
	if err := f.owned(id, userID); err != nil {
		return err
	}
	delete(f.courses, id)
	return nil
}

func TestCourseService(t *testing.T) {
	ctx := context.Background()
	repo := newFakeCourseRepo()
	svc := NewCourseService(repo)
	owner, other := uuid.New(), uuid.New()

	_, err := svc.CreateCourse(ctx, &model.Course{Title: "   ", UserID: owner})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, repo.courses)

	created, err := svc.CreateCourse(ctx, &model.Course{Title: "Go", UserID: owner})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, owner, created.UserID)

	_, err = svc.UpdateCourse(ctx, &model.Course{ID: created.ID, Title: "Hijack", UserID: other})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "Go", repo.courses[created.ID].Title)

	_, err = svc.UpdateCourse(ctx, &model.Course{ID: 999, Title: "X", UserID: owner})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.UpdateCourse(ctx, &model.Course{Title: "X", UserID: owner})
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := svc.UpdateCourse(ctx, &model.Course{ID: created.ID, Title: "Go 2", UserID: owner})
	require.NoError(t, err)
	assert.Equal(t, "Go 2", updated.Title)

	assert.ErrorIs(t, svc.DeleteCourse(ctx, created.ID, other), ErrForbidden)
	assert.ErrorIs(t, svc.DeleteCourse(ctx, 0, owner), ErrValidation)
	require.NoError(t, svc.DeleteCourse(ctx, created.ID, owner))
	assert.ErrorIs(t, svc.DeleteCourse(ctx, created.ID, owner), ErrNotFound)
}

type fakeLessonRepo struct {
	lastCreate *model.Lesson
	err        error
}

func (f *fakeLessonRepo) ListLessonsByCourseID(context.Context, int64) ([]model.Lesson, error) {
	return nil, f.err
}
func (f *fakeLessonRepo) GetLessonByID(context.Context, int64) (*model.Lesson, error) {
	return nil, f.err
}
func (f *fakeLessonRepo) CreateLesson(_ context.Context, l *model.Lesson, _ uuid.UUID) error {
	f.lastCreate = l
	return f.err
}
func (f *fakeLessonRepo) UpdateLesson(context.Context, *model.Lesson, uuid.UUID) error {
	return f.err
}
func (f *fakeLessonRepo) DeleteLesson(context.Context, int64, uuid.UUID) error {
	return f.err
}

func TestLessonServiceValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewLessonService(&fakeLessonRepo{})
	user := uuid.New()

	tests := []struct {
		name   string
		lesson model.Lesson
	}{
		{"missing course", model.Lesson{Title: "T", Content: "C"}},
		{"blank title", model.Lesson{CourseID: 1, Title: " ", Content: "C"}},
		{"missing content", model.Lesson{CourseID: 1, Title: "T"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := tt.lesson
			_, err := svc.CreateLesson(ctx, &l, user)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	_, err := svc.UpdateLesson(ctx, &model.Lesson{CourseID: 1, Title: "T", Content: "C"}, user)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.ListLessons(ctx, 0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLessonServiceMapsRepositoryErrors(t *testing.T) {
	ctx := context.Background()
	user := uuid.New()
	lesson := func() *model.Lesson { return &model.Lesson{ID: 3, CourseID: 1, Title: "T", Content: "C"} }

	svc := NewLessonService(&fakeLessonRepo{err: repository.ErrNotOwner})
	_, err := svc.CreateLesson(ctx, lesson(), user)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, svc.DeleteLesson(ctx, 3, user), ErrForbidden)

	svc = NewLessonService(&fakeLessonRepo{err: repository.ErrNotFound})
	_, err = svc.UpdateLesson(ctx, lesson(), user)
	assert.ErrorIs(t, err, ErrNotFound)

	boom := errors.New("boom")
	svc = NewLessonService(&fakeLessonRepo{err: boom})
	assert.ErrorIs(t, svc.DeleteLesson(ctx, 3, user), boom)
}

type fakeOutlineRepo struct {
	outlines map[int64]*model.Outline
	nextID   int64
}

func (f *fakeOutlineRepo) ListRecentOutlines(_ context.Context, limit int) ([]model.Outline, error) {
	var out []model.Outline
	for id := f.nextID; id > 0 && len(out) < limit; id-- {
		if o, ok := f.outlines[id]; ok {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOutlineRepo) GetOutlineByID(_ context.Context, id int64) (*model.Outline, error) {
	o, ok := f.outlines[id]
	if !ok {
		return nil, nil
	}
	return o, nil
}

func (f *fakeOutlineRepo) CreateOutline(_ context.Context, o *model.Outline) error {
	f.nextID++
	o.ID = f.nextID
	cp := *o
	f.outlines[o.ID] = &cp
	return nil
}

func (f *fakeOutlineRepo) UpdateOutline(_ context.Context, o *model.Outline) error {
	if _, ok := f.outlines[o.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *o
	f.outlines[o.ID] = &cp
	return nil
}

func (f *fakeOutlineRepo) DeleteOutline(_ context.Context, id int64) error {
	if _, ok := f.outlines[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.outlines, id)
	return nil
}

type fakeStore struct {
	objects map[string]string
}

func (f *fakeStore) PutObject(_ context.Context, key string, body []byte, _ string) error {
	f.objects[key] = string(body)
	return nil
}

func (f *fakeStore) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	return "https://objects.test/" + key + "?ttl=" + ttl.String(), nil
}

func TestOutlineService(t *testing.T) {
	ctx := context.Background()
	repo := &fakeOutlineRepo{outlines: map[int64]*model.Outline{}}
	svc := NewOutlineService(repo, nil, zerolog.Nop())

	for i := 0; i < 12; i++ {
		_, err := svc.CreateOutline(ctx, &model.Outline{Title: "T", Content: "C"})
		require.NoError(t, err)
	}
	list, err := svc.ListOutlines(ctx)
	require.NoError(t, err)
	assert.Len(t, list, OutlineListLimit)
	assert.Equal(t, int64(12), list[0].ID)

	_, err = svc.CreateOutline(ctx, &model.Outline{Title: "T"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdateOutline(ctx, &model.Outline{ID: 99, Title: "T", Content: "C"})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.DeleteOutline(ctx, 1))
	assert.ErrorIs(t, svc.DeleteOutline(ctx, 1), ErrNotFound)

	_, err = svc.ExportOutline(ctx, 2)
	assert.ErrorIs(t, err, ErrExportDisabled)
}

func TestOutlineExport(t *testing.T) {
	ctx := context.Background()
	repo := &fakeOutlineRepo{outlines: map[int64]*model.Outline{}}
	store := &fakeStore{objects: map[string]string{}}
	svc := NewOutlineService(repo, store, zerolog.Nop())

	desc := "Short intro"
	o, err := svc.CreateOutline(ctx, &model.Outline{Title: "Go Basics", Description: &desc, Content: "1. Types"})
	require.NoError(t, err)

	export, err := svc.ExportOutline(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://objects.test/outlines/1.md?ttl=15m0s", export.URL)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), export.ExpiresAt, time.Minute)
	assert.Equal(t, "# Go Basics\n\n> Short intro\n\n1. Types\n", store.objects["outlines/1.md"])

	_, err = svc.ExportOutline(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOutlineMarkdownWithoutDescription(t *testing.T) {
	md := OutlineMarkdown(&model.Outline{Title: "T", Content: "body\n"})
	assert.Equal(t, "# T\n\nbody\n", md)
	assert.False(t, strings.Contains(md, ">"))
}
