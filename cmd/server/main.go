package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/anonto42/component-feed/backend/internal/app"
	"github.com/anonto42/component-feed/backend/internal/middleware"
	"github.com/anonto42/component-feed/backend/internal/router"
	"github.com/anonto42/component-feed/backend/pkg/config"
	"github.com/anonto42/component-feed/backend/pkg/firebase"
	"github.com/anonto42/component-feed/backend/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		l := logger.New(logger.Options{Format: "console"})
		l.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "component-feed"})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	db, err := config.InitDB(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.CloseDB()

	backend, err := app.OpenStore(cfg, db)
	if err != nil {
		return err
	}
	if err := backend.Migrate(ctx); err != nil {
		return err
	}
	log.Info().Str("backend", cfg.StoreBackend).Msg("record store ready")

	verifier, err := newVerifier(ctx, cfg)
	if err != nil {
		return err
	}

	svc := app.NewServices(backend.Store, cfg, log)
	deps := router.Deps{
		Composer:  svc.Feed,
		Ledger:    svc.Ledger,
		Publisher: svc.Publish,
		Profiles:  svc.Profiles,
		Verifier:  verifier,
		Log:       log,
	}
	if svc.Generator != nil {
		deps.Generator = svc.Generator
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	config.SetupMiddleware(e, log)
	router.SetupRoutes(e, deps)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info().Msg("shutting down")
	return e.Shutdown(shutdownCtx)
}

func newVerifier(ctx context.Context, cfg *config.Config) (middleware.TokenVerifier, error) {
	switch cfg.AuthProvider {
	case config.AuthFirebase:
		fb, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			return nil, err
		}
		return fb, nil
	case config.AuthJWT:
		return middleware.NewJWTVerifier(cfg.JWTSecret), nil
	default:
		return nil, nil
	}
}
