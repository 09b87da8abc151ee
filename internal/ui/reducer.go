package ui

import "coursehub/internal/model"

// Action is an event applied to State by Reduce.
type Action interface {
	action()
}

type (
	LoadingStarted  struct{}
	LoadingFinished struct{}

	OutlinesLoaded struct{ Outlines []model.Outline }
	CoursesLoaded  struct{ Courses []model.CourseWithOwner }
	LessonsLoaded  struct {
		CourseID int64
		Lessons  []model.Lesson
	}

	Navigated         struct{ Page Page }
	NewOutlineOpened  struct{}
	OutlineEditOpened struct{ Outline model.Outline }
	OutlineViewOpened struct{ Outline model.Outline }
	DraftChanged      struct{ Draft Draft }
	// FormClosed clears the draft and selection after a save or cancel.
	FormClosed struct{}

	SessionChanged struct{ Session *Session }

	RequestFailed  struct{ Message string }
	ErrorDismissed struct{}
)

func (LoadingStarted) action()    {}
func (LoadingFinished) action()   {}
func (OutlinesLoaded) action()    {}
func (CoursesLoaded) action()     {}
func (LessonsLoaded) action()     {}
func (Navigated) action()         {}
func (NewOutlineOpened) action()  {}
func (OutlineEditOpened) action() {}
func (OutlineViewOpened) action() {}
func (DraftChanged) action()      {}
func (FormClosed) action()        {}
func (SessionChanged) action()    {}
func (RequestFailed) action()     {}
func (ErrorDismissed) action()    {}

// Reduce returns the state that results from applying a to s. It does not
// modify s.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case LoadingStarted:
		s.pending++
	case LoadingFinished:
		if s.pending > 0 {
			s.pending--
		}

	case OutlinesLoaded:
		s.Outlines = a.Outlines
		s.LastError = ""
	case CoursesLoaded:
		s.Courses = a.Courses
		s.LastError = ""
	case LessonsLoaded:
		s.CourseID = a.CourseID
		s.Lessons = a.Lessons
		s.LastError = ""

	case Navigated:
		s.Page = a.Page
	case NewOutlineOpened:
		s.Draft = Draft{}
		s.Selected = nil
		s.Page = PageCreate
	case OutlineEditOpened:
		o := a.Outline
		s.Draft = draftOf(o)
		s.Selected = &o
		s.Page = PageEdit
	case OutlineViewOpened:
		o := a.Outline
		s.Selected = &o
		s.Page = PageView
	case DraftChanged:
		s.Draft = a.Draft
	case FormClosed:
		s.Draft = Draft{}
		s.Selected = nil
		s.Page = s.landing()

	case SessionChanged:
		s.Session = a.Session
		switch {
		case a.Session == nil:
			s.Page = PageLogin
			s.Draft = Draft{}
			s.Selected = nil
		case s.Page == PageLogin || s.Page == PageHome:
			s.Page = PageDashboard
		}

	case RequestFailed:
		s.LastError = a.Message
	case ErrorDismissed:
		s.LastError = ""
	}
	return s
}

func draftOf(o model.Outline) Draft {
	d := Draft{Title: o.Title, Content: o.Content}
	if o.Description != nil {
		d.Description = *o.Description
	}
	return d
}
