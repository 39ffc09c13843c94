// GET  /api/v1/health                 # Проверка доступности (публичный)
// POST /api/v1/marks/batch            # Пачка оценок, upsert (auth)
// GET  /api/v1/assessments/{id}/marks # Оценки по контрольной (auth)
// GET  /api/v1/students/{id}/marks    # Оценки ученика (auth)

package api

import (
	healthAPI "gradebook/internal/app/server/api/http/health"
	markAPI "gradebook/internal/app/server/api/http/mark"
	"gradebook/internal/app/server/api/http/middleware"
	"gradebook/internal/app/server/api/http/middleware/auth"
	"gradebook/internal/app/server/api/http/middleware/logger"
	"gradebook/internal/domain/mark"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/exp/slog"
)

type Handlers struct {
	Health *healthAPI.Handler
	Mark   *markAPI.Handler
}

// Deps are the collaborators the API needs; DB may be nil.
type Deps struct {
	DB        healthAPI.Pinger
	Marks     mark.Repository
	TokenHash string
}

// New создает *chi.Mux со всеми операциями через huma.Register
func New(deps Deps, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()
	mux.Use(chimw.Recoverer)

	config := huma.DefaultConfig("Gradebook API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	API := humachi.New(mux, config)

	h := handlers(deps, log)
	h.Health.SetupRoutes(API)
	h.Mark.SetupRoutes(API)

	return mux
}

func handlers(deps Deps, log *slog.Logger) *Handlers {
	authMW := auth.New(deps.TokenHash, log)
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(deps.DB, log, middlewares.GetAllAndClear())

	markService := mark.NewService(deps.Marks, log)
	middlewares.Add(loggerMW.Middleware(), authMW.Middleware())
	markHandler := markAPI.NewHandler(markService, log, middlewares.GetAllAndClear())

	return &Handlers{
		Health: healthHandler,
		Mark:   markHandler,
	}
}
