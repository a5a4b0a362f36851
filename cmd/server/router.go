package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/studyrooms-api/internal/api"
	apiMiddleware "github.com/phrazzld/studyrooms-api/internal/api/middleware"
)

// setupRouter creates the router with its middleware chain and routes.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger, app.telemetry.Tracer()))
	r.Use(middleware.Recoverer)

	lessonHandler := api.NewLessonHandler(app.lessonService, app.logger)
	roomHandler := api.NewRoomHandler(app.roomService, app.progressService, app.logger)
	healthHandler := api.NewHealthHandler(app.mode, app.generator.String(), app.telemetry, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/lessons", lessonHandler.CreateLesson)
			r.Get("/lessons", lessonHandler.ListLessons)
			r.Get("/lessons/{id}", lessonHandler.GetLesson)
			r.Post("/lessons/{id}/archive", lessonHandler.ArchiveLesson)

			r.Get("/lessons/{id}/rooms/{room}", roomHandler.GetRoom)
			r.Post("/lessons/{id}/rooms/{room}/progress", roomHandler.RecordProgress)
		})
	})

	r.Get("/health", healthHandler.Health)

	return r
}
