// Package ui holds the client application's state machine: a State value, the
// Actions that change it, a pure Reduce function, a Store that notifies
// subscribers, and a Controller that turns API calls into Actions.
package ui

import (
	"coursehub/internal/model"

	"github.com/google/uuid"
)

type Page string

const (
	PageHome      Page = "home"
	PageDashboard Page = "dashboard"
	PageCreate    Page = "create"
	PageEdit      Page = "edit"
	PageView      Page = "view"
	PageLogin     Page = "login"
)

// Session is a signed-in identity as reported by the identity provider.
type Session struct {
	Token  string
	UserID uuid.UUID
	Email  string
}

// Draft is the outline form being edited.
type Draft struct {
	Title       string
	Description string
	Content     string
}

type State struct {
	Page     Page
	Outlines []model.Outline
	Courses  []model.CourseWithOwner
	Lessons  []model.Lesson
	// CourseID is the course whose lessons are loaded
	CourseID int64
	Draft    Draft
	// Selected is the outline being edited or viewed
	Selected *model.Outline
	Session  *Session
	// pending counts outstanding network calls
	pending   int
	LastError string
}

// Loading reports whether any network call is outstanding.
func (s State) Loading() bool {
	return s.pending > 0
}

// Editing reports whether a save should update Selected rather than create.
func (s State) Editing() bool {
	return s.Page == PageEdit && s.Selected != nil
}

// InitialState is the anonymous home page.
func InitialState() State {
	return State{Page: PageHome}
}

// landing is the page a finished or cancelled form returns to.
func (s State) landing() Page {
	if s.Session != nil {
		return PageDashboard
	}
	return PageHome
}
