package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestLogger)
	r.Use(Recoverer)
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	r.Get("/", apiHandler.HomeHandler)
	r.Post("/upload-pdf", apiHandler.UploadPDFHandler)
	r.Post("/ask", apiHandler.AskHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		r.Route("/v1", func(r chi.Router) {
			r.Get("/qa/ping", apiHandler.PingHandler)
			r.Get("/documents", apiHandler.ListDocumentsHandler)
		})
	})

	return r
}
