// Package cli implements feedctl, the maintenance command line
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/anonto42/component-feed/backend/internal/app"
	"github.com/anonto42/component-feed/backend/pkg/config"
	"github.com/anonto42/component-feed/backend/pkg/logger"
)

// Env is what commands run against
type Env struct {
	Config   *config.Config
	Backend  *app.Backend
	Services *app.Services
	Close    func()
}

// Opener builds an Env
type Opener func(ctx context.Context) (*Env, error)

// RootOptions holds global flags for all commands
type RootOptions struct {
	Format string // "json" | "text"
	open   Opener
}

// ValidFormats defines the allowed output formats
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the feedctl root command. A nil open loads
// configuration from the environment.
func NewRootCommand(open Opener) *cobra.Command {
	if open == nil {
		open = OpenFromEnv
	}
	opts := &RootOptions{open: open}

	cmd := &cobra.Command{
		Use:   "feedctl",
		Short: "Maintenance tasks for the component feed",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range ValidFormats {
				if f == opts.Format {
					return nil
				}
			}
			return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
		},
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewReconcileCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))
	return cmd
}

// OpenFromEnv loads configuration and opens the configured store
func OpenFromEnv(ctx context.Context) (*Env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "feedctl", Writer: os.Stderr})
	db, err := config.InitDB(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	backend, err := app.OpenStore(cfg, db)
	if err != nil {
		db.CloseDB()
		return nil, err
	}
	return &Env{
		Config:   cfg,
		Backend:  backend,
		Services: app.NewServices(backend.Store, cfg, log),
		Close:    db.CloseDB,
	}, nil
}

func (o *RootOptions) env(ctx context.Context) (*Env, error) {
	e, err := o.open(ctx)
	if err != nil {
		return nil, err
	}
	if e.Close == nil {
		e.Close = func() {}
	}
	return e, nil
}

// emit writes v as JSON, or text via the supplied printer
func (o *RootOptions) emit(w io.Writer, v any, text func(io.Writer)) error {
	if o.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}
