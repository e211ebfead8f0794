// GET  /api/health       # Проверка доступности (публичный)
// GET  /api/me           # Текущий владелец (auth)
// POST /api/drafts       # Создать черновик (auth)
// GET  /api/drafts       # Список черновиков (auth)
// GET  /api/drafts/{id}  # Получить черновик (auth)
// PUT  /api/drafts/{id}  # Обновить черновик (auth)
// DELETE /api/drafts/{id} # Отбросить черновик (auth)

package api

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"

	draftAPI "inmodraft/internal/app/server/api/http/draft"
	healthAPI "inmodraft/internal/app/server/api/http/health"
	meAPI "inmodraft/internal/app/server/api/http/me"
	"inmodraft/internal/app/server/api/http/middleware"
	"inmodraft/internal/app/server/api/http/middleware/auth"
	"inmodraft/internal/app/server/api/http/middleware/logger"
	"inmodraft/internal/domain/analytics"
	"inmodraft/internal/domain/draft"
	"inmodraft/internal/domain/session"
	"inmodraft/internal/infrastructure/storage/postgres"
)

type Handlers struct {
	Health *healthAPI.Handler
	Me     *meAPI.Handler
	Draft  *draftAPI.Handler
}

// New создает *chi.Mux со всеми операциями через huma.Register
func New(storage *postgres.Storage, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	config := huma.DefaultConfig("Inmodraft API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	API := humachi.New(mux, config)

	h := handlers(storage, log)
	h.Health.SetupRoutes(API)
	h.Me.SetupRoutes(API)
	h.Draft.SetupRoutes(API)

	return mux
}

func handlers(storage *postgres.Storage, log *slog.Logger) *Handlers {
	sessionRepo := postgres.NewSessionRepository(storage, log)
	sessionService := session.NewService(sessionRepo, log)
	authMW := auth.New(sessionService, log)
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(log, middlewares.GetAllAndClear())

	middlewares.Add(authMW.Middleware())
	middlewares.Add(loggerMW.Middleware())
	meHandler := meAPI.NewHandler(log, middlewares.GetAllAndClear())

	analyticsRepo := postgres.NewAnalyticsRepository(storage, log)
	analyticsService := analytics.NewService(analyticsRepo, log)
	draftRepo := postgres.NewDraftRepository(storage, log)
	draftService := draft.NewService(draftRepo, analyticsService, log)
	middlewares.Add(authMW.Middleware())
	middlewares.Add(loggerMW.Middleware())
	draftHandler := draftAPI.NewHandler(draftService, log, middlewares.GetAllAndClear())

	return &Handlers{
		Health: healthHandler,
		Me:     meHandler,
		Draft:  draftHandler,
	}
}
