package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dmarceta/meet-accounts-be/internal/api/handlers"
	"github.com/dmarceta/meet-accounts-be/internal/auth"
	"github.com/dmarceta/meet-accounts-be/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(issuer *auth.Issuer, userSvc services.UserServiceProvider, tokenSvc services.TokenServiceProvider, resetSvc services.ResetServiceProvider, eventSvc services.EventServiceProvider, allowedOrigin string) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{allowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userSvc, tokenSvc, resetSvc)
	profileHandler := handlers.NewProfileHandler(userSvc)
	eventHandler := handlers.NewEventHandler(userSvc, eventSvc)

	r.Route("/api/accounts", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register/", authHandler.Register)
			r.Post("/login/", authHandler.Login)
			r.Post("/token/refresh/", authHandler.Refresh)
			r.Post("/password-reset/", authHandler.PasswordReset)
			r.Post("/password-reset/confirm/", authHandler.PasswordResetConfirm)

			// Logout needs a valid access token on top of the refresh token
			// in the body.
			r.Group(func(r chi.Router) {
				r.Use(issuer.Middleware())
				r.Post("/logout/", authHandler.Logout)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(issuer.Middleware())
			r.Get("/profile/", profileHandler.Get)
			r.Patch("/profile/", profileHandler.Update)
			r.Get("/events/", eventHandler.Recent)
		})
	})

	return r
}
