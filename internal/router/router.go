package router

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/anonto42/component-feed/backend/internal/handlers"
	"github.com/anonto42/component-feed/backend/internal/middleware"
)

// Deps are the services the routes are wired to. Generator may be nil,
// which leaves /generate unregistered.
type Deps struct {
	Composer  handlers.Composer
	Ledger    handlers.Ledger
	Publisher handlers.Publisher
	Profiles  handlers.Profiles
	Generator handlers.Generator
	Verifier  middleware.TokenVerifier
	Log       zerolog.Logger
}

// SetupRoutes configures all application routes
func SetupRoutes(e *echo.Echo, d Deps) {
	e.HTTPErrorHandler = handlers.ErrorHandler(d.Log)

	e.GET("/health", handlers.HealthCheck)

	api := e.Group("/api/v1")
	api.Use(middleware.ResolveViewer(d.Verifier))

	handlers.NewFeedHandler(d.Composer).RegisterFeedRoutes(api)
	handlers.NewEngagementHandler(d.Ledger).RegisterEngagementRoutes(api)
	handlers.NewComponentHandler(d.Publisher).RegisterComponentRoutes(api)
	handlers.NewProfileHandler(d.Profiles).RegisterProfileRoutes(api)
	if d.Generator != nil {
		handlers.NewGeneratorHandler(d.Generator).RegisterGeneratorRoutes(api)
	}

	d.Log.Debug().Int("routes", len(e.Routes())).Msg("routes configured")
}
