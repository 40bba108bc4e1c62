package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/qtpi-bonding/folio/internal/config"
	"github.com/qtpi-bonding/folio/internal/progress"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Validate content and generate the static site",
	Long: `Validates every content file and data file, then renders the site into the
output directory. Files whose bytes did not change since the last build are
left untouched.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().String("env", "", "build environment: development or production (overrides config)")
	buildCmd.Flags().Bool("clean", false, "remove the output directory and forget cached outputs first")
	buildCmd.Flags().Bool("skip-validation", false, "render without the pre-build validation")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if env, _ := cmd.Flags().GetString("env"); env != "" {
		cfg.Environment = config.Environment(env)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid --env: %w", err)
		}
	}

	database, store, err := openBuildCache(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	if clean, _ := cmd.Flags().GetBool("clean"); clean {
		if err := os.RemoveAll(cfg.OutputDir); err != nil {
			return fmt.Errorf("removing %s: %w", cfg.OutputDir, err)
		}
		n, err := store.Reset(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Cleaned %s (%d cached outputs forgotten)\n", cfg.OutputDir, n)
	}

	skip, _ := cmd.Flags().GetBool("skip-validation")
	b := &builder{
		cfg:            cfg,
		store:          store,
		out:            os.Stdout,
		skipValidation: skip,
		reporter:       progress.NewReporter("Rendering pages"),
	}

	res, err := b.build(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("\nBuilt %s for %s: %d pages, %d files written, %d unchanged (%s)\n",
		cfg.OutputDir, cfg.Environment, res.Pages, res.Written, res.Skipped, res.Duration.Round(time.Millisecond))
	return nil
}
