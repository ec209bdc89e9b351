package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/threadview-dev/threadview/internal/middleware/metrics"
	"github.com/threadview-dev/threadview/internal/setup"
)

// New creates and configures the router with all the routes.
func New(deps *setup.Dependencies, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	h := deps.Handler
	auth := deps.Auth

	r.Route("/v1/threads/{thread}", func(r chi.Router) {
		// these work anonymously; an identity scopes view marks and
		// preferences to the client
		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuth())
			r.Get("/", h.GetThread)
			r.Post("/view", h.RegisterView)
			r.Post("/posts/{post}/toggle", h.ToggleReplies)
		})

		// mutations require identity; 401 is the login prompt
		r.Group(func(r chi.Router) {
			r.Use(auth.NeedAuth())
			r.Put("/", h.UpdateThread)
			r.Delete("/", h.DeleteThread)
			r.Put("/save", h.SaveThread)
			r.Delete("/save", h.UnsaveThread)
			r.Post("/replies", h.SubmitReply)
			r.Post("/posts/{post}/votes", h.CastVote)
			r.Delete("/posts/{post}", h.DeletePost)
		})
	})

	r.With(auth.NeedAuth()).Post("/v1/posts/{post}/report", deps.Handler.ReportPost)

	return r
}
