package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidfriends/admin/internal/middleware"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users        UserStore
	Sessions     SessionManager
	Videos       VideoStore
	Assets       AssetRemover
	LoginLimiter RateLimiter

	// TrustProxyHeaders makes rate limiting key on X-Forwarded-For and
	// X-Real-IP instead of the connection address.
	TrustProxyHeaders bool
}

// NewRouter wires the admin API routes.
func NewRouter(logger *slog.Logger, deps Dependencies) http.Handler {
	health := HealthHandler{}
	auth := AuthHandler{Users: deps.Users, Sessions: deps.Sessions, Limiter: deps.LoginLimiter, TrustProxyHeaders: deps.TrustProxyHeaders}
	users := UserHandler{Users: deps.Users, Assets: deps.Assets}
	videos := VideoHandler{Videos: deps.Videos, Assets: deps.Assets}

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(logger))

	r.Get("/healthz", health.Handle)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", auth.Login)
		r.Post("/auth/refresh", auth.Refresh)
		r.Post("/auth/logout", auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(deps.Sessions))

			r.Get("/users/", users.List)
			r.Delete("/users/{id}", users.Delete)
			r.Patch("/users/{id}/role", users.SetRole)

			r.Get("/videos/admin/all", videos.ListAll)
			r.Delete("/videos/{id}", videos.Delete)
			r.Patch("/videos/{id}/share", videos.Share)
		})
	})

	return r
}
