package ui

import (
	"context"
	"strings"

	"coursehub/internal/api/v1/dto"
	"coursehub/internal/model"

	"github.com/rs/zerolog"
)

// API is the subset of the HTTP client the controller drives.
type API interface {
	ListOutlines(ctx context.Context) ([]model.Outline, error)
	CreateOutline(ctx context.Context, in dto.OutlineCreateDTO) (*model.Outline, error)
	UpdateOutline(ctx context.Context, in dto.OutlineUpdateDTO) (*model.Outline, error)
	DeleteOutline(ctx context.Context, id int64) error
	ExportOutline(ctx context.Context, id int64) (*dto.OutlineExportResponseDTO, error)

	ListCourses(ctx context.Context) ([]model.CourseWithOwner, error)
	CreateCourse(ctx context.Context, in dto.CourseCreateDTO) (*model.Course, error)
	UpdateCourse(ctx context.Context, in dto.CourseUpdateDTO) (*model.Course, error)
	DeleteCourse(ctx context.Context, id int64) error

	ListLessons(ctx context.Context, courseID int64) ([]model.Lesson, error)
	CreateLesson(ctx context.Context, in dto.LessonCreateDTO) (*model.Lesson, error)
	UpdateLesson(ctx context.Context, in dto.LessonUpdateDTO) (*model.Lesson, error)
	DeleteLesson(ctx context.Context, id int64) error
}

// Controller performs user operations against the API and records their
// outcome in the Store.
type Controller struct {
	api    API
	store  *Store
	logger zerolog.Logger
}

func NewController(api API, store *Store, logger zerolog.Logger) *Controller {
	return &Controller{
		api:    api,
		store:  store,
		logger: logger.With().Str("component", "Controller").Logger(),
	}
}

func (c *Controller) Store() *Store {
	return c.store
}

// begin marks a network call as outstanding. The returned function clears it
// and must be deferred.
func (c *Controller) begin() (end func()) {
	c.store.Dispatch(LoadingStarted{})
	return func() { c.store.Dispatch(LoadingFinished{}) }
}

func (c *Controller) failed(op string, err error) error {
	c.logger.Error().Err(err).Str("op", op).Msg("Request failed")
	c.store.Dispatch(RequestFailed{Message: op + ": " + err.Error()})
	return err
}

func (c *Controller) NewOutline() {
	c.store.Dispatch(NewOutlineOpened{})
}

func (c *Controller) EditOutline(o model.Outline) {
	c.store.Dispatch(OutlineEditOpened{Outline: o})
}

func (c *Controller) ViewOutline(o model.Outline) {
	c.store.Dispatch(OutlineViewOpened{Outline: o})
}

func (c *Controller) UpdateDraft(d Draft) {
	c.store.Dispatch(DraftChanged{Draft: d})
}

// Cancel leaves the form without saving.
func (c *Controller) Cancel() {
	c.store.Dispatch(FormClosed{})
}

func (c *Controller) FetchOutlines(ctx context.Context) error {
	defer c.begin()()
	outlines, err := c.api.ListOutlines(ctx)
	if err != nil {
		return c.failed("fetching outlines", err)
	}
	c.store.Dispatch(OutlinesLoaded{Outlines: outlines})
	return nil
}

// SaveOutline submits the draft, updating the selected outline on the edit
// page and creating a new one otherwise. Once the server accepts it the form
// is closed and the list refreshed. A failed refresh is recorded in the state
// but not returned, so callers never retry a save that already happened.
// The other mutations refresh the same way.
func (c *Controller) SaveOutline(ctx context.Context) error {
	defer c.begin()()
	s := c.store.State()

	var err error
	if s.Editing() {
		_, err = c.api.UpdateOutline(ctx, dto.OutlineUpdateDTO{
			ID:          s.Selected.ID,
			Title:       s.Draft.Title,
			Description: optional(s.Draft.Description),
			Content:     s.Draft.Content,
		})
	} else {
		_, err = c.api.CreateOutline(ctx, dto.OutlineCreateDTO{
			Title:       s.Draft.Title,
			Description: optional(s.Draft.Description),
			Content:     s.Draft.Content,
		})
	}
	if err != nil {
		return c.failed("saving outline", err)
	}
	c.store.Dispatch(FormClosed{})
	_ = c.FetchOutlines(ctx)
	return nil
}

func (c *Controller) DeleteOutline(ctx context.Context, id int64) error {
	defer c.begin()()
	if err := c.api.DeleteOutline(ctx, id); err != nil {
		return c.failed("deleting outline", err)
	}
	_ = c.FetchOutlines(ctx)
	return nil
}

// ExportOutline returns a temporary download URL for the outline.
func (c *Controller) ExportOutline(ctx context.Context, id int64) (string, error) {
	defer c.begin()()
	export, err := c.api.ExportOutline(ctx, id)
	if err != nil {
		return "", c.failed("exporting outline", err)
	}
	return export.URL, nil
}

func (c *Controller) FetchCourses(ctx context.Context) error {
	defer c.begin()()
	courses, err := c.api.ListCourses(ctx)
	if err != nil {
		return c.failed("fetching courses", err)
	}
	c.store.Dispatch(CoursesLoaded{Courses: courses})
	return nil
}

// SaveCourse creates a course when id is zero and updates it otherwise.
func (c *Controller) SaveCourse(ctx context.Context, id int64, title, description string) (*model.Course, error) {
	defer c.begin()()
	var (
		course *model.Course
		err    error
	)
	if id == 0 {
		course, err = c.api.CreateCourse(ctx, dto.CourseCreateDTO{Title: title, Description: optional(description)})
	} else {
		course, err = c.api.UpdateCourse(ctx, dto.CourseUpdateDTO{ID: id, Title: title, Description: optional(description)})
	}
	if err != nil {
		return nil, c.failed("saving course", err)
	}
	_ = c.FetchCourses(ctx)
	return course, nil
}

func (c *Controller) DeleteCourse(ctx context.Context, id int64) error {
	defer c.begin()()
	if err := c.api.DeleteCourse(ctx, id); err != nil {
		return c.failed("deleting course", err)
	}
	_ = c.FetchCourses(ctx)
	return nil
}

func (c *Controller) FetchLessons(ctx context.Context, courseID int64) error {
	defer c.begin()()
	lessons, err := c.api.ListLessons(ctx, courseID)
	if err != nil {
		return c.failed("fetching lessons", err)
	}
	c.store.Dispatch(LessonsLoaded{CourseID: courseID, Lessons: lessons})
	return nil
}

// SaveLesson creates a lesson when id is zero and updates it otherwise, then
// reloads the course's lessons.
func (c *Controller) SaveLesson(ctx context.Context, id, courseID int64, title, content string) (*model.Lesson, error) {
	defer c.begin()()
	var (
		lesson *model.Lesson
		err    error
	)
	if id == 0 {
		lesson, err = c.api.CreateLesson(ctx, dto.LessonCreateDTO{CourseID: courseID, Title: title, Content: content})
	} else {
		lesson, err = c.api.UpdateLesson(ctx, dto.LessonUpdateDTO{ID: id, CourseID: courseID, Title: title, Content: content})
	}
	if err != nil {
		return nil, c.failed("saving lesson", err)
	}
	_ = c.FetchLessons(ctx, courseID)
	return lesson, nil
}

func (c *Controller) DeleteLesson(ctx context.Context, id int64) error {
	defer c.begin()()
	if err := c.api.DeleteLesson(ctx, id); err != nil {
		return c.failed("deleting lesson", err)
	}
	if courseID := c.store.State().CourseID; courseID != 0 {
		_ = c.FetchLessons(ctx, courseID)
	}
	return nil
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
