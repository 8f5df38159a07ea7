package routes

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jdangi/portfolio-api/internal/auth"
	"github.com/jdangi/portfolio-api/internal/handlers"
	"github.com/jdangi/portfolio-api/internal/middleware"
	"github.com/jdangi/portfolio-api/internal/models"
	"github.com/jdangi/portfolio-api/internal/services"
	pkghttp "github.com/jdangi/portfolio-api/pkg/http"
)

// Deps carries the wired handlers and gate collaborators RegisterRoutes needs.
type Deps struct {
	AuthHandler    *handlers.AuthHandler
	SetupHandler   *handlers.SetupHandler
	MessageHandler *handlers.MessageHandler
	ProfileHandler *handlers.ProfileHandler

	TokenManager *auth.TokenManager
	AdminRepo    auth.AdminFetcher
	LoginLimiter services.LoginLimiter
	IPConfig     *pkghttp.IPConfig
}

// RegisterRoutes registers all application routes. The router passed in is
// the /api subrouter.
func RegisterRoutes(router chi.Router, deps Deps) {
	requireAdmin := auth.RequireAdmin(deps.TokenManager, deps.AdminRepo)
	optionalAuth := auth.OptionalAuth(deps.TokenManager, deps.AdminRepo)
	setupLimit := middleware.RateLimitByIP(10, time.Minute)

	router.Route("/auth", func(r chi.Router) {
		r.With(middleware.LoginRateLimit(deps.LoginLimiter, deps.IPConfig)).
			Post("/admin/login", deps.AuthHandler.Login)
		r.Post("/refresh", deps.AuthHandler.Refresh)

		// Logout only needs an identity for revocation; it must succeed with
		// no session at all.
		r.With(optionalAuth).Post("/logout", deps.AuthHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)
			r.Post("/verify", deps.AuthHandler.Verify)
			r.Get("/profile", deps.AuthHandler.Profile)
			r.Get("/check", deps.AuthHandler.Check)
		})
	})

	router.Route("/setup", func(r chi.Router) {
		r.Use(setupLimit)
		r.Post("/admin", deps.SetupHandler.CreateAdmin)
		r.Get("/status", deps.SetupHandler.Status)
	})

	router.Post("/messages", deps.MessageHandler.Create)
	router.Group(func(r chi.Router) {
		r.Use(requireAdmin)
		r.Get("/messages", deps.MessageHandler.List)
		r.Patch("/messages/{id}/read", deps.MessageHandler.MarkRead)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(models.RoleSuperAdmin))
			r.Delete("/messages/{id}", deps.MessageHandler.Delete)
		})
	})

	router.With(optionalAuth).Get("/profile", deps.ProfileHandler.Get)
	router.With(requireAdmin).Put("/profile", deps.ProfileHandler.Update)
}
