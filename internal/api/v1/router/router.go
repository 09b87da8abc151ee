package router

import (
	"database/sql"
	"net/http"

	"coursehub/internal/api/v1/dto"
	"coursehub/internal/api/v1/handler"
	"coursehub/internal/config"
	"coursehub/internal/middleware"
	"coursehub/internal/repository"
	"coursehub/internal/service"
	"coursehub/internal/storage"
	"coursehub/internal/telemetry"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// Dependencies are built once in main and shared by every request.
type Dependencies struct {
	Config    *config.Config
	DB        *sql.DB
	JWTSecret string
	// Store is nil when outline export is disabled
	Store    storage.ObjectStore
	Reporter telemetry.Reporter
	Logger   zerolog.Logger
}

func New(deps Dependencies) http.Handler {
	logger := deps.Logger
	reporter := deps.Reporter
	if reporter == nil {
		reporter = telemetry.NopReporter{}
	}

	// 1. Validator
	validate := dto.NewValidator()

	// 2. Repositories & services & handlers
	courseRepo := repository.NewCourseRepository(deps.DB, logger)
	lessonRepo := repository.NewLessonRepository(deps.DB, logger)
	outlineRepo := repository.NewOutlineRepository(deps.DB, logger)

	courseSvc := service.NewCourseService(courseRepo)
	lessonSvc := service.NewLessonService(lessonRepo)
	outlineSvc := service.NewOutlineService(outlineRepo, deps.Store, logger)

	courseHandler := handler.NewCourseHandler(courseSvc, validate, reporter, logger)
	lessonHandler := handler.NewLessonHandler(lessonSvc, validate, reporter, logger)
	outlineHandler := handler.NewOutlineHandler(outlineSvc, validate, reporter, logger)
	healthHandler := handler.NewHealthHandler(deps.DB, logger)

	// 3. Middleware
	authMiddleware := middleware.AuthMiddleware(deps.JWTSecret, logger)

	// 4. Routes
	mux := http.NewServeMux()
	courseHandler.RegisterRoutes(mux, authMiddleware)
	lessonHandler.RegisterRoutes(mux, authMiddleware)
	outlineHandler.RegisterRoutes(mux, deps.Store != nil)
	mux.Handle("/healthz", middleware.AllowMethods(http.MethodGet)(healthHandler))

	logger.Info().Bool("export_enabled", deps.Store != nil).Msg("Router initialized")

	// 5. CORS, recovery, request logging
	c := cors.New(cors.Options{
		AllowedOrigins: corsOrigins(deps.Config),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	return middleware.LoggerMiddleware(logger)(
		middleware.Recovery(logger, reporter)(c.Handler(mux)),
	)
}

func corsOrigins(cfg *config.Config) []string {
	if cfg == nil || len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}
