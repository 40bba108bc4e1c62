package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qtpi-bonding/folio/internal/config"
	"github.com/qtpi-bonding/folio/internal/scaffold"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create folio.yml and a starter site with an interactive wizard",
	Long: `Runs an interactive wizard that writes folio.yml, then creates the data
files, content directories and sample entries of a new site. Existing files
are left untouched. Use --yes to accept every default without prompting.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var cfg *config.Config
		if yes, _ := cmd.Flags().GetBool("yes"); yes {
			cfg = config.DefaultConfig()
			if err := cfg.Save(cfgFile); err != nil {
				return err
			}
			fmt.Printf("Configuration saved to %s\n", cfgFile)
		} else {
			c, err := config.RunWizard(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}

		r, err := scaffold.Site(cfg)
		if err != nil {
			return fmt.Errorf("creating site: %w", err)
		}
		for _, p := range r.Created {
			fmt.Printf("  created %s\n", p)
		}
		if len(r.Skipped) > 0 {
			fmt.Printf("  %d existing file(s) kept\n", len(r.Skipped))
		}

		fmt.Println("\nNext steps:")
		fmt.Println("  folio validate   check the sample content")
		fmt.Println("  folio serve      preview the site with live reload")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolP("yes", "y", false, "write the default configuration without prompting")
	rootCmd.AddCommand(initCmd)
}
