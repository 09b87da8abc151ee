package handler

import (
	"net/http"
	"strconv"

	"coursehub/internal/api/v1/dto"
	"coursehub/internal/middleware"
	"coursehub/internal/model"
	"coursehub/internal/service"
	"coursehub/internal/telemetry"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// LessonHandler serves lesson listing and owner-checked lesson writes
type LessonHandler struct {
	lessonService service.LessonService
	validate      *validator.Validate
	failer
}

func NewLessonHandler(lessonService service.LessonService, validate *validator.Validate, reporter telemetry.Reporter, logger zerolog.Logger) *LessonHandler {
	return &LessonHandler{
		lessonService: lessonService,
		validate:      validate,
		failer: failer{
			resource: "Lesson",
			logger:   logger.With().Str("handler", "LessonHandler").Logger(),
			reporter: reporter,
		},
	}
}

func (h *LessonHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/api/getLessons", middleware.AllowMethods(http.MethodGet)(http.HandlerFunc(h.getLessons)))
	mux.Handle("/api/saveLesson", middleware.AllowMethods(http.MethodPost, http.MethodPut, http.MethodDelete)(
		authMw(http.HandlerFunc(h.saveLesson)),
	))
}

func (h *LessonHandler) getLessons(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("courseId")
	if raw == "" {
		writeErr(w, http.StatusBadRequest, "courseId is required")
		return
	}
	courseID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || courseID <= 0 {
		writeErr(w, http.StatusBadRequest, "courseId must be a positive integer")
		return
	}
	lessons, err := h.lessonService.ListLessons(r.Context(), courseID)
	if err != nil {
		h.fail(w, r, err, "Error fetching lessons")
		return
	}
	if lessons == nil {
		lessons = []dto.LessonResponseDTO{}
	}
	writeJSON(w, http.StatusOK, lessons)
}

func (h *LessonHandler) saveLesson(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	switch r.Method {
	case http.MethodPost:
		var req dto.LessonCreateDTO
		if !decodeBody(w, r, h.validate, &req, "Course ID, title, and content are required") {
			return
		}
		created, err := h.lessonService.CreateLesson(r.Context(), &model.Lesson{
			CourseID: req.CourseID,
			Title:    req.Title,
			Content:  req.Content,
		}, identity.UserID)
		if err != nil {
			h.fail(w, r, err, "Error saving lesson")
			return
		}
		writeJSON(w, http.StatusCreated, created)

	case http.MethodPut:
		var req dto.LessonUpdateDTO
		if !decodeBody(w, r, h.validate, &req, "ID, course ID, title, and content are required") {
			return
		}
		updated, err := h.lessonService.UpdateLesson(r.Context(), &model.Lesson{
			ID:       req.ID,
			CourseID: req.CourseID,
			Title:    req.Title,
			Content:  req.Content,
		}, identity.UserID)
		if err != nil {
			h.fail(w, r, err, "Error updating lesson")
			return
		}
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		var req dto.DeleteDTO
		if !decodeBody(w, r, h.validate, &req, "ID is required") {
			return
		}
		if err := h.lessonService.DeleteLesson(r.Context(), req.ID, identity.UserID); err != nil {
			h.fail(w, r, err, "Error deleting lesson")
			return
		}
		writeJSON(w, http.StatusOK, dto.MessageResponseDTO{Message: "Lesson deleted successfully"})
	}
}
