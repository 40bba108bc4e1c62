package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/qtpi-bonding/folio/internal/site"
	"github.com/qtpi-bonding/folio/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate content frontmatter against the content schemas",
	Long: `Checks every content file of every configured collection against
content-schemas.json and reports errors and warnings per file. With --fix, a
guide listing the valid tags, work types, required fields and a frontmatter
skeleton per content type is printed as well.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().Bool("fix", false, "print the remediation guide")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := loadSchemas(cfg)
	if err != nil {
		return err
	}
	lib, err := site.LoadLibrary(cfg)
	if err != nil {
		return fmt.Errorf("loading content: %w", err)
	}

	report := validate.NewContentValidator(s, cfg.SourceDir, cfg.OutputDir, cfg.IsProduction()).ValidateAll(lib)
	validate.Print(os.Stdout, report, validate.PrintOptions{
		Mode:           validate.ModeContent,
		Help:           cfg.Validation.HelpMessages,
		FailOnWarnings: cfg.Validation.FailOnWarnings,
	})

	if fix, _ := cmd.Flags().GetBool("fix"); fix {
		fmt.Println()
		validate.PrintFixGuide(os.Stdout, s, cfg.Validation.HelpMessages)
	}
	return report.Err(cfg.Validation.FailOnWarnings)
}
