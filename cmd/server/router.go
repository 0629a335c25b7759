package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/triage-api/internal/api"
	apiMiddleware "github.com/phrazzld/triage-api/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.operatorStore, app.jwtService, app.passwordVerifier)
	automationHandler := api.NewAutomationHandler(app.states, app.broker, app.eventEmitter, app.logger)
	decisionsHandler := api.NewDecisionsHandler(app.decisionStore, app.logger)
	wsHandler := api.NewWSHandler(app.registry, app.states, app.broker, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Post("/automation/process-emails", automationHandler.StartProcessing)
			r.Get("/automation/status", automationHandler.Status)
			r.Post("/automation/provide-feedback", automationHandler.ProvideFeedback)
			r.Get("/decisions", decisionsHandler.List)
		})
	})

	// WebSocket endpoint. Behind the same auth middleware; browser clients
	// pass the token as a query parameter.
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Get("/ws", wsHandler.Connect)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
