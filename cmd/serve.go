package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/qtpi-bonding/folio/internal/config"
	"github.com/qtpi-bonding/folio/internal/progress"
	"github.com/qtpi-bonding/folio/internal/server"
	"github.com/qtpi-bonding/folio/internal/watch"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Build the site, serve it locally and rebuild on changes",
	Long: `Performs a development build, serves the output directory and watches the
source directory. Every settled batch of changes triggers a rebuild, after which
open pages reload themselves over a websocket.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "port to listen on (overrides config)")
	serveCmd.Flags().Bool("no-reload", false, "disable live reload")
	serveCmd.Flags().Bool("skip-validation", false, "render without the pre-build validation")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Environment = config.EnvDevelopment
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Server.Port = port
	}
	if noReload, _ := cmd.Flags().GetBool("no-reload"); noReload {
		cfg.Server.LiveReload = false
	}

	database, store, err := openBuildCache(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	skip, _ := cmd.Flags().GetBool("skip-validation")
	b := &builder{
		cfg:            cfg,
		store:          store,
		out:            os.Stdout,
		skipValidation: skip,
		liveReload:     cfg.Server.LiveReload,
		reporter:       progress.NewReporter("Rendering pages"),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("Performing initial build...")
	if _, err := b.build(ctx); err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}
	b.reporter = progress.Nop{}

	srv := server.New(server.Config{
		Port:      cfg.Server.Port,
		OutputDir: cfg.OutputDir,
		AllowAll:  cfg.Server.AllowAllOrigins,
	}, logger, store)

	w, err := watch.New(watch.Options{
		Roots:  []string{cfg.SourceDir},
		Ignore: []string{cfg.OutputDir, cfg.CacheDir},
	}, logger)
	if err != nil {
		return err
	}
	go w.Run(ctx, func(paths []string) {
		logger.Info("change detected, rebuilding", zap.Int("files", len(paths)), zap.String("first", paths[0]))
		res, err := b.build(ctx)
		if err != nil {
			logger.Error("rebuild failed", zap.Error(err))
			return
		}
		logger.Info("site rebuilt",
			zap.Int("written", res.Written),
			zap.Int("skipped", res.Skipped),
			zap.Duration("duration", res.Duration),
		)
		if cfg.Server.LiveReload && res.Written > 0 {
			srv.Hub().Broadcast()
		}
	})

	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nShutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	fmt.Printf("Serving %s at http://localhost:%d (press Ctrl+C to stop)\n", cfg.OutputDir, cfg.Server.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving site: %w", err)
	}
	return nil
}
