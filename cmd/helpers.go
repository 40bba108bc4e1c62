package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/qtpi-bonding/folio/internal/buildcache"
	"github.com/qtpi-bonding/folio/internal/config"
	"github.com/qtpi-bonding/folio/internal/content"
	"github.com/qtpi-bonding/folio/internal/db"
	"github.com/qtpi-bonding/folio/internal/progress"
	"github.com/qtpi-bonding/folio/internal/schema"
	"github.com/qtpi-bonding/folio/internal/site"
	"github.com/qtpi-bonding/folio/internal/validate"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `folio init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// loadSchemas reads the content schema from the data directory. A missing
// file falls back to the built-in schema.
func loadSchemas(cfg *config.Config) (*schema.Schemas, error) {
	path := cfg.DataPath(schema.FileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Warn("content schema missing, using built-in defaults", zap.String("file", path))
		return schema.Default(), nil
	}
	return schema.Load(path)
}

// openBuildCache opens the sqlite build cache under the configured cache
// directory.
func openBuildCache(cfg *config.Config) (*db.DB, *buildcache.Store, error) {
	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating cache dir: %w", err)
	}
	database, err := db.Open(filepath.Join(cfg.CacheDir, db.FileName))
	if err != nil {
		return nil, nil, fmt.Errorf("opening build cache: %w", err)
	}
	return database, buildcache.NewStore(database, cfg.OutputDir), nil
}

// builder runs validation and generation and records each run in the
// build history.
type builder struct {
	cfg            *config.Config
	store          *buildcache.Store
	out            io.Writer
	skipValidation bool
	liveReload     bool
	reporter       progress.Reporter
}

func (b *builder) build(ctx context.Context) (*site.Result, error) {
	lib, err := site.LoadLibrary(b.cfg)
	if err != nil {
		return nil, fmt.Errorf("loading content: %w", err)
	}

	if b.skipValidation {
		logger.Warn("skipping pre-build validation")
	} else if err := b.validate(lib); err != nil {
		return nil, err
	}

	rec, err := b.store.StartBuild(ctx, string(b.cfg.Environment))
	if err != nil {
		return nil, err
	}

	g := site.NewGenerator(b.cfg, logger)
	g.Cache = b.store
	g.BuildID = rec.ID
	g.LiveReload = b.liveReload
	if b.reporter != nil {
		g.Reporter = b.reporter
	}

	res, genErr := g.Generate(ctx, lib)
	if res != nil {
		rec.Pages, rec.Written, rec.Skipped = res.Pages, res.Written, res.Skipped
	}
	if err := b.store.FinishBuild(ctx, rec, genErr); err != nil {
		logger.Error("recording build", zap.String("build", rec.ID), zap.Error(err))
	}
	if genErr != nil {
		return nil, fmt.Errorf("generating site: %w", genErr)
	}

	logger.Debug("build finished",
		zap.String("build", rec.ID),
		zap.Int("pages", res.Pages),
		zap.Int("written", res.Written),
		zap.Int("skipped", res.Skipped),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}

// validate prints the pre-build report and fails the build on errors, or on
// warnings when the config asks for it.
func (b *builder) validate(lib *content.Library) error {
	s, err := loadSchemas(b.cfg)
	if err != nil {
		// The data file checks report the broken schema.
		logger.Debug("content schema unusable", zap.Error(err))
		s = nil
	}
	report := validate.NewBuildValidator(b.cfg, s).Run(lib)
	validate.Print(b.out, report, validate.PrintOptions{
		Mode:           validate.ModeBuild,
		Help:           b.cfg.Validation.HelpMessages,
		FailOnWarnings: b.cfg.Validation.FailOnWarnings,
	})
	return report.Err(b.cfg.Validation.FailOnWarnings)
}
