package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-profile-api/internal/application/auth"
	"github.com/go-profile-api/internal/application/profile"
	"github.com/go-profile-api/internal/application/session"
	"github.com/go-profile-api/internal/config"
	"github.com/go-profile-api/internal/transport/http/handler"
	appmiddleware "github.com/go-profile-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider, deps.SessionRepo)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	authSvc := auth.NewService(deps.ProfileRepo, deps.ActivationRepo, deps.Mailer)
	sessionSvc := session.NewService(deps.SessionRepo, authSvc, deps.JWTProvider)
	profileSvc := profile.NewService(profile.ServiceDeps{
		ProfileRepo: deps.ProfileRepo,
		SessionRepo: deps.SessionRepo,
		JWTProvider: deps.JWTProvider,
	})

	healthH := handler.NewHealthHandler()
	profileH := handler.NewProfileHandler(profileSvc)
	sessionH := handler.NewSessionHandler(sessionSvc, deps.JWTProvider)
	resetH := handler.NewPasswordResetHandler(authSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Get("/profiles/check/{login}", profileH.Check)
		r.With(sensitiveRL.Limit).Post("/profiles", profileH.Register)
		r.With(sensitiveRL.Limit).Post("/sessions/login", sessionH.Login)
		r.Post("/sessions/logout", sessionH.Logout)
		r.With(sensitiveRL.Limit).Post("/password-reset/{action}", resetH.Action)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/sessions", sessionH.GetCurrent)
			r.Get("/profiles/me", profileH.Get)
			r.Put("/profiles/me", profileH.Update)
			r.Delete("/profiles/me", profileH.Remove)
		})
	})

	return r
}
