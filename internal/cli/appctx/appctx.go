// Package appctx provides a shared bootstrap helper for CLI commands.
// It centralizes config loading, catalog selection, and tracker construction
// to reduce boilerplate across commands.
package appctx

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/lherron/farmlist/internal/aggregate"
	"github.com/lherron/farmlist/internal/catalog"
	"github.com/lherron/farmlist/internal/config"
	"github.com/lherron/farmlist/internal/db"
	"github.com/lherron/farmlist/internal/store"
	"github.com/lherron/farmlist/internal/tracker"
	"github.com/spf13/cobra"
)

// Catalog source kinds, reported by App.Source
const (
	SourceDir      = "dir"
	SourceDB       = "db"
	SourceEmbedded = "embedded"
)

// App holds the shared application context for commands.
type App struct {
	// Config is the loaded configuration
	Config *config.Config

	// DB is the opened catalog database (nil unless NeedsDB is set)
	DB *db.DB

	// Catalog is the loaded catalog (nil unless NeedsCatalog or NeedsTracker is set)
	Catalog *catalog.Catalog

	// Source describes where the catalog came from, e.g. "embedded" or "db:IMP-00003"
	Source string

	// Tracker is a fresh session over Catalog (nil unless NeedsTracker is set)
	Tracker *tracker.Tracker

	// Logger writes to the command's stderr
	Logger *log.Logger
}

// Close releases resources held by the App.
// Safe to call multiple times.
func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
		a.DB = nil
	}
}

// Store wraps the opened database
func (a *App) Store() *store.Store {
	return store.New(a.DB)
}

// Options configures the bootstrap behavior.
type Options struct {
	// NeedsDB opens the catalog database and requires it to be migrated.
	NeedsDB bool

	// NeedsCatalog loads the catalog from the configured source.
	NeedsCatalog bool

	// NeedsTracker builds a tracker over the catalog. Implies NeedsCatalog.
	NeedsTracker bool
}

// DefaultOptions returns the options user commands need: a catalog and a tracker.
func DefaultOptions() Options {
	return Options{NeedsCatalog: true, NeedsTracker: true}
}

// AdminOptions returns options for commands that work on the catalog database.
func AdminOptions() Options {
	return Options{NeedsDB: true}
}

// RunFunc is the signature for command run functions.
type RunFunc func(app *App, cmd *cobra.Command, args []string) error

// WithApp wraps a command's run function with shared bootstrap logic.
// The database is closed automatically when the wrapped function returns.
func WithApp(opts Options, fn RunFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := Bootstrap(cmd, opts)
		if err != nil {
			return err
		}
		defer app.Close()

		return fn(app, cmd, args)
	}
}

// Bootstrap initializes the App according to the given options.
// Callers are responsible for calling App.Close() when done.
func Bootstrap(cmd *cobra.Command, opts Options) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		Logger: log.New(cmd.ErrOrStderr(), cmd.Root().Name()+": ", 0),
	}

	if opts.NeedsDB {
		database, err := OpenMigrated(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		app.DB = database
	}

	if opts.NeedsCatalog || opts.NeedsTracker {
		cat, source, err := LoadCatalog(cfg)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.Catalog = cat
		app.Source = source
	}

	if opts.NeedsTracker {
		app.Tracker = tracker.New(app.Catalog, TrackerOptions(cfg, app.Logger))
	}

	return app, nil
}

// applyFlags copies persistent flag overrides into the config.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	overrides := []struct {
		flag string
		dst  *string
	}{
		{"db", &cfg.DBPath},
		{"catalog", &cfg.CatalogDir},
		{"output", &cfg.Output},
	}
	for _, o := range overrides {
		if f := cmd.Flag(o.flag); f != nil {
			if v := f.Value.String(); v != "" {
				*o.dst = v
			}
		}
	}
	if f := cmd.Flag("selected-only"); f != nil && f.Changed {
		cfg.SelectedBundlesOnly = f.Value.String() == "true"
	}
}

// OpenMigrated opens the database at path and fails when migrations are pending.
func OpenMigrated(path string) (*db.DB, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := database.CheckSchema(); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// LoadCatalog picks the catalog source: the configured directory, then the
// catalog database when it exists and holds an import, then the embedded
// defaults.
func LoadCatalog(cfg *config.Config) (*catalog.Catalog, string, error) {
	if cfg.CatalogDir != "" {
		cat, err := catalog.LoadDir(cfg.CatalogDir)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load catalog from %s: %w", cfg.CatalogDir, err)
		}
		return cat, SourceDir + ":" + cfg.CatalogDir, nil
	}

	if db.Exists(cfg.DBPath) {
		database, err := OpenMigrated(cfg.DBPath)
		if err != nil {
			return nil, "", err
		}
		defer database.Close()

		cat, rec, err := store.New(database).Catalogs.Load()
		switch {
		case err == nil:
			return cat, SourceDB + ":" + rec.ID, nil
		case !errors.Is(err, store.ErrNoCatalog):
			return nil, "", fmt.Errorf("failed to load catalog from database: %w", err)
		}
	}

	cat, err := catalog.LoadDefaults()
	if err != nil {
		return nil, "", err
	}
	return cat, SourceEmbedded, nil
}

// TrackerOptions maps configuration onto tracker options.
func TrackerOptions(cfg *config.Config, logger *log.Logger) tracker.Options {
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}
	return tracker.Options{
		Aggregate:      aggregate.Options{SelectedBundlesOnly: cfg.SelectedBundlesOnly},
		ClickThreshold: cfg.ClickThreshold,
		ClickLargeStep: cfg.ClickLargeStep,
		Logger:         logger,
		Debug:          cfg.Debug(),
	}
}
