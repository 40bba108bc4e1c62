package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qtpi-bonding/folio/internal/theme"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Generate the color token stylesheet from app-theme.json",
	Long: `Reads app-theme.json from the data directory and writes the CSS custom
properties for the light and dark themes to
<source>/assets/css/design-tokens/colors.css. Builds write the same file into
the output directory, so running this is only needed to commit the stylesheet.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		t, err := theme.Load(cfg.DataPath(theme.FileName))
		if err != nil {
			return err
		}
		path, size, err := theme.WriteCSS(t, cfg.SourceDir)
		if err != nil {
			return err
		}

		fmt.Printf("Generated %s (%d bytes)\n", path, size)
		fmt.Printf("  light: %d colors, dark: %d colors, neutral: %d shades\n",
			len(theme.Keys(t.Light)), len(theme.Keys(t.Dark)), len(theme.Keys(t.Neutral)))

		css := theme.GenerateCSS(t)
		if missing := theme.Check(css, t); len(missing) > 0 {
			return fmt.Errorf("generated stylesheet is missing: %s", strings.Join(missing, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(themeCmd)
}
