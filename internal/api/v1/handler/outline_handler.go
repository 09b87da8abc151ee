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

// OutlineHandler serves the public outline endpoints. Outlines have no owner.
type OutlineHandler struct {
	outlineService service.OutlineService
	validate       *validator.Validate
	failer
}

func NewOutlineHandler(outlineService service.OutlineService, validate *validator.Validate, reporter telemetry.Reporter, logger zerolog.Logger) *OutlineHandler {
	return &OutlineHandler{
		outlineService: outlineService,
		validate:       validate,
		failer: failer{
			resource: "Outline",
			logger:   logger.With().Str("handler", "OutlineHandler").Logger(),
			reporter: reporter,
		},
	}
}

// RegisterRoutes mounts outline routes. The export route is only mounted when
// withExport is set.
func (h *OutlineHandler) RegisterRoutes(mux *http.ServeMux, withExport bool) {
	mux.Handle("/api/getOutlines", middleware.AllowMethods(http.MethodGet)(http.HandlerFunc(h.getOutlines)))
	mux.Handle("/api/saveOutline", middleware.AllowMethods(http.MethodPost, http.MethodPut, http.MethodDelete)(
		http.HandlerFunc(h.saveOutline),
	))
	if withExport {
		mux.Handle("/api/exportOutline", middleware.AllowMethods(http.MethodGet)(http.HandlerFunc(h.exportOutline)))
	}
}

func (h *OutlineHandler) getOutlines(w http.ResponseWriter, r *http.Request) {
	outlines, err := h.outlineService.ListOutlines(r.Context())
	if err != nil {
		h.fail(w, r, err, "Error fetching outlines")
		return
	}
	if outlines == nil {
		outlines = []dto.OutlineResponseDTO{}
	}
	writeJSON(w, http.StatusOK, outlines)
}

func (h *OutlineHandler) saveOutline(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req dto.OutlineCreateDTO
		if !decodeBody(w, r, h.validate, &req, "Title and content are required") {
			return
		}
		created, err := h.outlineService.CreateOutline(r.Context(), &model.Outline{
			Title:       req.Title,
			Description: req.Description,
			Content:     req.Content,
		})
		if err != nil {
			h.fail(w, r, err, "Error saving outline")
			return
		}
		writeJSON(w, http.StatusCreated, created)

	case http.MethodPut:
		var req dto.OutlineUpdateDTO
		if !decodeBody(w, r, h.validate, &req, "ID, title, and content are required") {
			return
		}
		updated, err := h.outlineService.UpdateOutline(r.Context(), &model.Outline{
			ID:          req.ID,
			Title:       req.Title,
			Description: req.Description,
			Content:     req.Content,
		})
		if err != nil {
			h.fail(w, r, err, "Error updating outline")
			return
		}
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		var req dto.DeleteDTO
		if !decodeBody(w, r, h.validate, &req, "ID is required") {
			return
		}
		if err := h.outlineService.DeleteOutline(r.Context(), req.ID); err != nil {
			h.fail(w, r, err, "Error deleting outline")
			return
		}
		writeJSON(w, http.StatusOK, dto.MessageResponseDTO{Message: "Outline deleted successfully"})
	}
}

func (h *OutlineHandler) exportOutline(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id <= 0 {
		writeErr(w, http.StatusBadRequest, "ID is required")
		return
	}
	export, err := h.outlineService.ExportOutline(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "Error exporting outline")
		return
	}
	writeJSON(w, http.StatusOK, dto.OutlineExportResponseDTO{URL: export.URL, ExpiresAt: export.ExpiresAt})
}
