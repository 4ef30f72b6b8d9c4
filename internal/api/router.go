package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(app *App, analysisHandlers *AnalysisHandlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/ping", PingHandler)

	r.Route("/api", func(r chi.Router) {
		r.Route("/videos", func(r chi.Router) {
			r.Post("/", app.UploadHandler)
			r.Get("/", app.ListVideosHandler)
			r.Get("/{id}", app.GetVideoHandler)
			r.Get("/{id}/stream", app.StreamVideoHandler)
			r.Get("/{id}/reports", app.ListVideoReportsHandler)
			r.Post("/{id}/analysis", analysisHandlers.StartAnalysisHandler)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/{sessionID}", analysisHandlers.GetSessionHandler)
			r.Get("/{sessionID}/events", analysisHandlers.AnalysisStreamHandler)
			r.Post("/{sessionID}/stop", analysisHandlers.StopAnalysisHandler)
		})

		r.Get("/reports/{id}", app.GetReportHandler)
	})

	return r
}
