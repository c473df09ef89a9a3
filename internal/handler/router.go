package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avolkhin/shortener/internal/auth"
	"github.com/avolkhin/shortener/internal/middleware"
	"github.com/avolkhin/shortener/internal/ratelimit"
)

// SetupRouter builds the HTTP surface. The rate limiter guards only
// the write path; a nil limiter disables it.
func (h *Handler) SetupRouter(verifier *auth.Verifier, limiter *ratelimit.Limiter) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger(h.logger))
	r.Use(middleware.GzipMiddleware)
	r.Use(verifier.Middleware(h.logger))

	r.Route("/api", func(r chi.Router) {
		r.With(ratelimit.Middleware(limiter, "shorten", nil, h.logger)).
			Post("/shorten", h.ShortenHandler)
		r.Get("/stats/{code}", h.StatsHandler)
		r.Get("/me/urls", h.OwnedURLsHandler)
		r.Patch("/links/{code}", h.UpdateLinkHandler)
		r.Delete("/links/{code}", h.DeleteLinkHandler)
	})

	r.Get("/ping", h.PingHandler)
	r.Get("/{code}", h.RedirectHandler)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	})

	return r
}
