package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/mise/internal/blob"
	"github.com/zjrosen/mise/internal/cookbook"
	"github.com/zjrosen/mise/internal/infrastructure/sqlstore"
	"github.com/zjrosen/mise/internal/log"
	"github.com/zjrosen/mise/internal/metrics"
	apptechnique "github.com/zjrosen/mise/internal/technique/application"
	"github.com/zjrosen/mise/internal/templates"
	"github.com/zjrosen/mise/internal/tracing"
)

// appOptions selects the optional backends a command needs.
type appOptions struct {
	store      bool
	blobs      bool
	blobDriver string // overrides cfg.Blob.Driver when set
}

// app holds the services one command runs against.
type app struct {
	catalog  *apptechnique.CatalogService
	cookbook *cookbook.Service
	tracing  *tracing.Provider
	metrics  *metrics.Recorder
	db       *sqlstore.DB
}

func newApp(ctx context.Context, opts appOptions) (_ *app, err error) {
	a := &app{metrics: metrics.New()}
	defer func() {
		if err != nil {
			_ = a.close(ctx)
		}
	}()

	a.catalog, err = apptechnique.NewCatalogService(templates.CatalogFS(), apptechnique.ServiceConfig{
		UserBaseDir:  cfg.Catalog.UserDir,
		CacheTTL:     cfg.Cache.TTL,
		DisableCache: cfg.Cache.Disabled,
	})
	if err != nil {
		return nil, fmt.Errorf("technique catalog: %w", err)
	}

	a.tracing, err = tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}

	svc := cookbook.Config{
		Techniques: a.catalog,
		Policy:     cfg.Derivation.Policy(),
		Tracer:     a.tracing.Tracer(),
		Metrics:    a.metrics,
	}

	if opts.store {
		a.db, err = sqlstore.Open(cfg.Store)
		if err != nil {
			return nil, fmt.Errorf("recipe store: %w", err)
		}
		svc.Repository = a.db.RecipeRepository()
	}

	if opts.blobs {
		blobCfg := cfg.Blob
		if opts.blobDriver != "" {
			blobCfg.Driver = opts.blobDriver
		}
		svc.Blobs, err = blob.Open(ctx, blobCfg)
		if err != nil {
			return nil, fmt.Errorf("export store: %w", err)
		}
	}

	a.cookbook = cookbook.NewService(svc)
	return a, nil
}

// close flushes traces, closes the store and writes the metrics textfile.
func (a *app) close(ctx context.Context) error {
	var errs []error

	if a.tracing != nil {
		if err := a.tracing.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush traces: %w", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	if a.catalog != nil && cfg.Metrics.File != "" {
		stats := a.catalog.CacheStats()
		a.metrics.SetCacheStats(stats.Hits, stats.Misses)
		if err := a.metrics.WriteTextfile(cfg.Metrics.File); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		} else {
			log.Debug(log.CatCLI, "wrote metrics", "path", cfg.Metrics.File)
		}
	}
	return errors.Join(errs...)
}

// withApp builds an app for cmd, runs fn and closes the app.
func withApp(cmd *cobra.Command, opts appOptions, fn func(ctx context.Context, a *app) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.close(ctx); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(ctx, a)
}
