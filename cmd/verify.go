package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/qtpi-bonding/folio/internal/verify"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that the built site is ready to deploy",
	Long: `Checks the output directory for the required files and pages, warns about
assets over their size budget and makes sure index.html carries the markup the
browser scripts depend on. All checks are configured under verify in folio.yml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		report := verify.Run(cfg.OutputDir, cfg.Verify)
		if verify.Print(os.Stdout, report) {
			return nil
		}
		return report.Err()
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
