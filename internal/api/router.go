package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lifedash/lifedash/internal/access"
	"github.com/lifedash/lifedash/internal/api/handler"
	"github.com/lifedash/lifedash/internal/api/middleware"
	"github.com/lifedash/lifedash/internal/session"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Verifier            *session.Verifier
	Approval            *access.ApprovalList
	Registry            *access.Registry
	Resolver            *access.Resolver
	Gate                *access.Gate
	DBPinger            handler.DBPinger
	LoginHookSecretHash string
	Version             string
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)

	healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)
	r.Method("GET", "/metrics", promhttp.Handler())

	loginHook := handler.NewLoginHookHandler(deps.Resolver, deps.LoginHookSecretHash)
	r.Post("/hooks/login", loginHook.ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(deps.Verifier))
		r.Use(middleware.RequireApproved(deps.Approval))

		meHandler := handler.NewMeHandler(deps.Gate)
		r.Get("/me", meHandler.ServeHTTP)

		accessHandler := handler.NewAccessHandler(deps.Registry, deps.Gate, deps.Approval)
		r.Route("/access/grants", func(r chi.Router) {
			r.Get("/", accessHandler.List)
			r.Post("/", accessHandler.Create)
			r.Delete("/{email}", accessHandler.Delete)
		})
	})

	return r
}
