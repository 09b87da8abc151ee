package ui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"coursehub/internal/api/v1/dto"
	"coursehub/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduceOutlineForm(t *testing.T) {
	desc := "d"
	o := model.Outline{ID: 4, Title: "T", Description: &desc, Content: "C"}

	s := Reduce(InitialState(), OutlineEditOpened{Outline: o})
	assert.Equal(t, PageEdit, s.Page)
	assert.Equal(t, Draft{Title: "T", Description: "d", Content: "C"}, s.Draft)
	assert.True(t, s.Editing())

	s = Reduce(s, FormClosed{})
	assert.Equal(t, PageHome, s.Page)
	assert.Nil(t, s.Selected)
	assert.Equal(t, Draft{}, s.Draft)

	s = Reduce(s, OutlineViewOpened{Outline: o})
	assert.Equal(t, PageView, s.Page)
	assert.False(t, s.Editing())

	s = Reduce(s, NewOutlineOpened{})
	assert.Equal(t, PageCreate, s.Page)
	assert.Nil(t, s.Selected)
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	before := InitialState()
	after := Reduce(before, OutlinesLoaded{Outlines: []model.Outline{{ID: 1}}})
	assert.Empty(t, before.Outlines)
	assert.Len(t, after.Outlines, 1)
}

func TestReduceLoadingCounter(t *testing.T) {
	s := Reduce(InitialState(), LoadingStarted{})
	s = Reduce(s, LoadingStarted{})
	s = Reduce(s, LoadingFinished{})
	assert.True(t, s.Loading())
	s = Reduce(s, LoadingFinished{})
	assert.False(t, s.Loading())
	s = Reduce(s, LoadingFinished{})
	assert.False(t, s.Loading())
}

func TestReduceSession(t *testing.T) {
	s := Reduce(State{Page: PageLogin}, SessionChanged{Session: &Session{UserID: uuid.New()}})
	assert.Equal(t, PageDashboard, s.Page)

	s = Reduce(s, FormClosed{})
	assert.Equal(t, PageDashboard, s.Page)

	s = Reduce(s, SessionChanged{})
	assert.Equal(t, PageLogin, s.Page)
	assert.Nil(t, s.Session)
}

func TestStoreSubscribe(t *testing.T) {
	store := NewStore(InitialState())
	var seen []Page
	unsubscribe := store.Subscribe(func(s State) { seen = append(seen, s.Page) })

	store.Dispatch(Navigated{Page: PageCreate})
	unsubscribe()
	unsubscribe()
	store.Dispatch(Navigated{Page: PageHome})

	assert.Equal(t, []Page{PageCreate}, seen)
	assert.Equal(t, PageHome, store.State().Page)
}

func TestStoreDeliversStatesInOrder(t *testing.T) {
	store := NewStore(InitialState())
	var seen []int
	defer store.Subscribe(func(s State) { seen = append(seen, s.pending) })()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Dispatch(LoadingStarted{})
		}()
	}
	wg.Wait()

	require.Len(t, seen, n)
	for i, pending := range seen {
		assert.Equal(t, i+1, pending)
	}
}

func TestStoreSubscriberMayDispatch(t *testing.T) {
	store := NewStore(InitialState())
	var seen []Page
	defer store.Subscribe(func(s State) {
		seen = append(seen, s.Page)
		if s.Page == PageCreate {
			store.Dispatch(Navigated{Page: PageHome})
		}
	})()

	store.Dispatch(Navigated{Page: PageCreate})

	assert.Equal(t, []Page{PageCreate, PageHome}, seen)
	assert.Equal(t, PageHome, store.State().Page)
}

func TestStoreWatchSession(t *testing.T) {
	store := NewStore(State{Page: PageLogin})
	sessions := make(chan *Session)
	changed := make(chan Page, 4)
	defer store.Subscribe(func(s State) { changed <- s.Page })()

	stop := store.WatchSession(sessions)
	sessions <- &Session{Token: "t"}
	assert.Equal(t, PageDashboard, <-changed)
	sessions <- nil
	assert.Equal(t, PageLogin, <-changed)
	stop()
	stop()

	select {
	case sessions <- &Session{}:
		t.Fatal("session delivered after stop")
	case <-time.After(20 * time.Millisecond):
	}
	assert.Equal(t, PageLogin, store.State().Page)
}

type fakeAPI struct {
	mu       sync.Mutex
	outlines []model.Outline
	created  []dto.OutlineCreateDTO
	updated  []dto.OutlineUpdateDTO
	lessons  map[int64][]model.Lesson
	failWith error
	// listErr fails only the list calls
	listErr error
	// loadingSeen records Loading() observed inside each call
	loadingSeen []bool
	store       *Store
}

func (f *fakeAPI) observe() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.store != nil {
		f.loadingSeen = append(f.loadingSeen, f.store.State().Loading())
	}
	return f.failWith
}

func (f *fakeAPI) ListOutlines(context.Context) ([]model.Outline, error) {
	if err := f.observe(); err != nil {
		return nil, err
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.outlines, nil
}

func (f *fakeAPI) CreateOutline(_ context.Context, in dto.OutlineCreateDTO) (*model.Outline, error) {
	if err := f.observe(); err != nil {
		return nil, err
	}
	f.created = append(f.created, in)
	o := model.Outline{ID: int64(len(f.outlines) + 1), Title: in.Title, Description: in.Description, Content: in.Content}
	f.outlines = append([]model.Outline{o}, f.outlines...)
	return &o, nil
}

func (f *fakeAPI) UpdateOutline(_ context.Context, in dto.OutlineUpdateDTO) (*model.Outline, error) {
	if err := f.observe(); err != nil {
		return nil, err
	}
	f.updated = append(f.updated, in)
	return &model.Outline{ID: in.ID, Title: in.Title}, nil
}

func (f *fakeAPI) DeleteOutline(context.Context, int64) error { return f.observe() }

func (f *fakeAPI) ExportOutline(_ context.Context, id int64) (*dto.OutlineExportResponseDTO, error) {
	if err := f.observe(); err != nil {
		return nil, err
	}
	return &dto.OutlineExportResponseDTO{URL: "https://objects.test/x"}, nil
}

func (f *fakeAPI) ListCourses(context.Context) ([]model.CourseWithOwner, error) {
	if err := f.observe(); err != nil {
		return nil, err
	}
	return nil, f.listErr
}

func (f *fakeAPI) CreateCourse(_ context.Context, in dto.CourseCreateDTO) (*model.Course, error) {
	if err := f.observe(); err != nil {
		return nil, err
	}
	return &model.Course{ID: 1, Title: in.Title, Description: in.Description}, nil
}

func (f *fakeAPI) UpdateCourse(_ context.Context, in dto.CourseUpdateDTO) (*model.Course, error) {
	if err := f.observe(); err != nil {
		return nil, err
	}
	return &model.Course{ID: in.ID, Title: in.Title}, nil
}

func (f *fakeAPI) DeleteCourse(context.Context, int64) error { return f.observe() }

func (f *fakeAPI) ListLessons(_ context.Context, courseID int64) ([]model.Lesson, error) {
	if err := f.observe(); err != nil {
		return nil, err
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.lessons[courseID], nil
}

func (f *fakeAPI) CreateLesson(_ context.Context, in dto.LessonCreateDTO) (*model.Lesson, error) {
	if err := f.observe(); err != nil {
		return nil, err
	}
	l := model.Lesson{ID: 9, CourseID: in.CourseID, Title: in.Title, Content: in.Content}
	f.lessons[in.CourseID] = append([]model.Lesson{l}, f.lessons[in.CourseID]...)
	return &l, nil
}

func (f *fakeAPI) UpdateLesson(_ context.Context, in dto.LessonUpdateDTO) (*model.Lesson, error) {
	if err := f.observe(); err != nil {
		return nil, err
	}
	return &model.Lesson{ID: in.ID, CourseID: in.CourseID}, nil
}

func (f *fakeAPI) DeleteLesson(context.Context, int64) error { return f.observe() }

func newTestController() (*Controller, *fakeAPI) {
	store := NewStore(InitialState())
	api := &fakeAPI{lessons: map[int64][]model.Lesson{}, store: store}
	return NewController(api, store, zerolog.Nop()), api
}

func TestSaveOutlineCreatesFromNewForm(t *testing.T) {
	ctl, api := newTestController()
	ctx := context.Background()

	ctl.NewOutline()
	ctl.UpdateDraft(Draft{Title: "T", Content: "C"})
	require.NoError(t, ctl.SaveOutline(ctx))

	require.Len(t, api.created, 1)
	assert.Nil(t, api.created[0].Description)
	assert.Empty(t, api.updated)

	s := ctl.Store().State()
	assert.Equal(t, PageHome, s.Page)
	assert.Len(t, s.Outlines, 1)
	assert.Equal(t, Draft{}, s.Draft)
	assert.False(t, s.Loading())
}

func TestSaveOutlineUpdatesOnEditPage(t *testing.T) {
	ctl, api := newTestController()
	ctl.EditOutline(model.Outline{ID: 5, Title: "old", Content: "c"})
	ctl.UpdateDraft(Draft{Title: "new", Description: "d", Content: "c"})

	require.NoError(t, ctl.SaveOutline(context.Background()))
	require.Len(t, api.updated, 1)
	assert.Equal(t, int64(5), api.updated[0].ID)
	require.NotNil(t, api.updated[0].Description)
	assert.Equal(t, "d", *api.updated[0].Description)
	assert.Empty(t, api.created)
}

func TestLoadingHeldDuringCallAndReleasedOnError(t *testing.T) {
	ctl, api := newTestController()
	api.failWith = errors.New("offline")

	err := ctl.FetchOutlines(context.Background())
	require.Error(t, err)

	assert.Equal(t, []bool{true}, api.loadingSeen)
	s := ctl.Store().State()
	assert.False(t, s.Loading())
	assert.Contains(t, s.LastError, "offline")
}

func TestSaveOutlineFailureKeepsForm(t *testing.T) {
	ctl, api := newTestController()
	ctl.NewOutline()
	ctl.UpdateDraft(Draft{Title: "T", Content: "C"})
	api.failWith = errors.New("boom")

	require.Error(t, ctl.SaveOutline(context.Background()))
	s := ctl.Store().State()
	assert.Equal(t, PageCreate, s.Page)
	assert.Equal(t, "T", s.Draft.Title)
	assert.False(t, s.Loading())
}

func TestSaveOutlineClosesFormWhenRefreshFails(t *testing.T) {
	ctl, api := newTestController()
	api.listErr = errors.New("list unavailable")
	ctl.NewOutline()
	ctl.UpdateDraft(Draft{Title: "T", Content: "C"})

	require.NoError(t, ctl.SaveOutline(context.Background()))
	assert.Len(t, api.created, 1)

	s := ctl.Store().State()
	assert.Equal(t, PageHome, s.Page)
	assert.Equal(t, Draft{}, s.Draft)
	assert.Contains(t, s.LastError, "list unavailable")
	assert.False(t, s.Loading())
}

func TestMutationsSucceedWhenRefreshFails(t *testing.T) {
	ctl, api := newTestController()
	api.listErr = errors.New("list unavailable")
	ctx := context.Background()

	course, err := ctl.SaveCourse(ctx, 0, "Go", "")
	require.NoError(t, err)
	assert.Equal(t, "Go", course.Title)
	require.NoError(t, ctl.DeleteCourse(ctx, course.ID))

	lesson, err := ctl.SaveLesson(ctx, 0, 3, "L", "body")
	require.NoError(t, err)
	assert.Equal(t, int64(3), lesson.CourseID)
	require.NoError(t, ctl.DeleteOutline(ctx, 1))

	s := ctl.Store().State()
	assert.Contains(t, s.LastError, "list unavailable")
	assert.False(t, s.Loading())
}

func TestLessonsFlow(t *testing.T) {
	ctl, _ := newTestController()
	ctx := context.Background()

	lesson, err := ctl.SaveLesson(ctx, 0, 3, "L", "body")
	require.NoError(t, err)
	assert.Equal(t, int64(3), lesson.CourseID)

	s := ctl.Store().State()
	assert.Equal(t, int64(3), s.CourseID)
	require.Len(t, s.Lessons, 1)

	require.NoError(t, ctl.DeleteLesson(ctx, lesson.ID))
	assert.False(t, ctl.Store().State().Loading())
}

func TestExportOutline(t *testing.T) {
	ctl, _ := newTestController()
	url, err := ctl.ExportOutline(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "https://objects.test/x", url)
}
