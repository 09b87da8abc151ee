package handler

import (
	"net/http"

	"coursehub/internal/api/v1/dto"
	"coursehub/internal/middleware"
	"coursehub/internal/model"
	"coursehub/internal/service"
	"coursehub/internal/telemetry"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const courseErrorMsg = "Error handling course"

// CourseHandler handles course-related endpoints
type CourseHandler struct {
	courseService service.CourseService
	validate      *validator.Validate
	failer
}

// NewCourseHandler creates a new CourseHandler
func NewCourseHandler(courseService service.CourseService, validate *validator.Validate, reporter telemetry.Reporter, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		courseService: courseService,
		validate:      validate,
		failer: failer{
			resource: "Course",
			logger:   logger.With().Str("handler", "CourseHandler").Logger(),
			reporter: reporter,
		},
	}
}

// RegisterRoutes mounts course routes
func (h *CourseHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/api/getCourses", middleware.AllowMethods(http.MethodGet)(http.HandlerFunc(h.getCourses)))
	mux.Handle("/api/saveCourse", middleware.AllowMethods(http.MethodPost, http.MethodPut, http.MethodDelete)(
		authMw(http.HandlerFunc(h.saveCourse)),
	))
}

// getCourses lists recent courses with their owners. Public.
func (h *CourseHandler) getCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courseService.ListCourses(r.Context())
	if err != nil {
		h.fail(w, r, err, "Error fetching courses")
		return
	}
	if courses == nil {
		courses = []dto.CourseListItemDTO{}
	}
	writeJSON(w, http.StatusOK, courses)
}

func (h *CourseHandler) saveCourse(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	switch r.Method {
	case http.MethodPost:
		h.createCourse(w, r, identity)
	case http.MethodPut:
		h.updateCourse(w, r, identity)
	case http.MethodDelete:
		h.deleteCourse(w, r, identity)
	}
}

func (h *CourseHandler) createCourse(w http.ResponseWriter, r *http.Request, identity middleware.Identity) {
	var req dto.CourseCreateDTO
	if !decodeBody(w, r, h.validate, &req, "Title is required") {
		return
	}
	created, err := h.courseService.CreateCourse(r.Context(), &model.Course{
		Title:       req.Title,
		Description: req.Description,
		UserID:      identity.UserID,
	})
	if err != nil {
		h.fail(w, r, err, courseErrorMsg)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *CourseHandler) updateCourse(w http.ResponseWriter, r *http.Request, identity middleware.Identity) {
	var req dto.CourseUpdateDTO
	if !decodeBody(w, r, h.validate, &req, "ID and title are required") {
		return
	}
	updated, err := h.courseService.UpdateCourse(r.Context(), &model.Course{
		ID:          req.ID,
		Title:       req.Title,
		Description: req.Description,
		UserID:      identity.UserID,
	})
	if err != nil {
		h.fail(w, r, err, courseErrorMsg)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *CourseHandler) deleteCourse(w http.ResponseWriter, r *http.Request, identity middleware.Identity) {
	var req dto.DeleteDTO
	if !decodeBody(w, r, h.validate, &req, "ID is required") {
		return
	}
	if err := h.courseService.DeleteCourse(r.Context(), req.ID, identity.UserID); err != nil {
		h.fail(w, r, err, courseErrorMsg)
		return
	}
	writeJSON(w, http.StatusOK, dto.MessageResponseDTO{Message: "Course deleted successfully"})
}
