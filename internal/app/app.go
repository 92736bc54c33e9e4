// Package app assembles stores and services from configuration. Both the
// server and feedctl start here.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/anonto42/component-feed/backend/internal/models"
	"github.com/anonto42/component-feed/backend/internal/repositories"
	"github.com/anonto42/component-feed/backend/internal/services/feed"
	"github.com/anonto42/component-feed/backend/internal/services/generator"
	"github.com/anonto42/component-feed/backend/internal/services/ledger"
	"github.com/anonto42/component-feed/backend/internal/services/profile"
	"github.com/anonto42/component-feed/backend/internal/services/publish"
	"github.com/anonto42/component-feed/backend/internal/store"
	"github.com/anonto42/component-feed/backend/internal/store/mongostore"
	"github.com/anonto42/component-feed/backend/internal/store/pgstore"
	"github.com/anonto42/component-feed/backend/internal/validation"
	"github.com/anonto42/component-feed/backend/pkg/config"
	"github.com/anonto42/component-feed/backend/pkg/logger"
)

// Backend is an opened record store plus its schema setup
type Backend struct {
	Store   store.Store
	migrate []func(context.Context) error
}

// Migrate creates tables, collections and indexes
func (b *Backend) Migrate(ctx context.Context) error {
	for _, m := range b.migrate {
		if err := m(ctx); err != nil {
			return err
		}
	}
	return nil
}

// OpenStore builds the record store for cfg.StoreBackend over db. The
// result is bounded by cfg.StoreTimeout.
func OpenStore(cfg *config.Config, db *config.DB) (*Backend, error) {
	clock := store.NewClock()
	b := &Backend{}
	var st store.Store

	switch cfg.StoreBackend {
	case config.BackendMemory:
		st = store.NewMemoryWithClock(clock, repositories.Tables()...)

	case config.BackendPostgres:
		pg := pgstore.New(db.Postgres, clock, pgstore.DefaultTables()...)
		b.migrate = append(b.migrate, pg.Migrate)
		st = pg

	case config.BackendMongo:
		ms := mongostore.New(db.Mongo.Database(cfg.MongoDatabase), clock, repositories.Tables()...)
		b.migrate = append(b.migrate, ms.EnsureIndexes)
		st = ms

	case config.BackendSplit:
		// items are documents; facts and profiles are relational
		var docs []store.Table
		var rel []pgstore.Table
		for _, t := range pgstore.DefaultTables() {
			if t.Name == models.TableItems {
				docs = append(docs, t.Table)
				continue
			}
			rel = append(rel, t)
		}
		ms := mongostore.New(db.Mongo.Database(cfg.MongoDatabase), clock, docs...)
		pg := pgstore.New(db.Postgres, clock, rel...)
		b.migrate = append(b.migrate, ms.EnsureIndexes, pg.Migrate)
		st = store.NewRouter(nil).
			Route(ms, models.TableItems).
			Route(pg, models.TableLikeFacts, models.TableSaveFacts, models.TableProfiles)

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	b.Store = store.WithTimeout(st, cfg.StoreTimeout)
	return b, nil
}

// Services are the application services over one store
type Services struct {
	Items     *repositories.StoreItemRepository
	Ledger    *ledger.Service
	Feed      *feed.Service
	Publish   *publish.Service
	Profiles  *profile.Service
	Generator *generator.Service
}

// NewServices wires repositories and services over st. Generator is nil
// when no GENERATOR_URL is configured.
func NewServices(st store.Store, cfg *config.Config, log zerolog.Logger) *Services {
	items := repositories.NewItemRepository(st)
	likes := repositories.NewLikeFactRepository(st)
	saves := repositories.NewSaveFactRepository(st)
	profiles := repositories.NewProfileRepository(st)
	v := validation.New()

	s := &Services{Items: items}
	s.Ledger = ledger.New(items, likes, saves, logger.Named(log, "ledger"))
	s.Feed = feed.New(items, saves, profiles, s.Ledger, logger.Named(log, "feed"))
	s.Publish = publish.New(items, likes, saves, v, logger.Named(log, "publish"))
	s.Profiles = profile.New(profiles, v)
	if cfg.GeneratorURL != "" {
		s.Generator = generator.New(generator.Options{
			URL:     cfg.GeneratorURL,
			Timeout: cfg.GeneratorTimeout,
			RPS:     cfg.GeneratorRPS,
			Burst:   cfg.GeneratorBurst,
		}, logger.Named(log, "generator"))
	}
	return s
}
