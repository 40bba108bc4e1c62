package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/qtpi-bonding/folio/internal/browsercheck"
)

var checkBrowserCmd = &cobra.Command{
	Use:   "check-browser",
	Short: "Run responsive behaviour checks in a headless browser",
	Long: `Loads the running site in Chrome at mobile (375x667), tablet (768x1024)
and desktop (1280x800) sizes and checks the sidebar defaults, the mobile
overlay, ARIA state, the tag filter and the theme toggle. Start the site with
folio serve first, or point --url at a deployed copy.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		url, _ := cmd.Flags().GetString("url")
		if url == "" {
			url = fmt.Sprintf("http://localhost:%d/", cfg.Server.Port)
		}

		checker := browsercheck.NewChecker(url, logger)
		checker.ControlURL, _ = cmd.Flags().GetString("control-url")
		headful, _ := cmd.Flags().GetBool("headful")
		checker.Headless = !headful
		if settle, _ := cmd.Flags().GetDuration("settle"); settle > 0 {
			checker.Settle = settle
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		report, err := checker.Run(ctx)
		if err != nil {
			return err
		}
		browsercheck.Print(os.Stdout, report)
		return report.Err()
	},
}

func init() {
	checkBrowserCmd.Flags().String("url", "", "site URL (defaults to the dev server)")
	checkBrowserCmd.Flags().String("control-url", "", "DevTools websocket URL of a running browser")
	checkBrowserCmd.Flags().Bool("headful", false, "show the browser window")
	checkBrowserCmd.Flags().Duration("settle", 500*time.Millisecond, "wait after load and each interaction")
	rootCmd.AddCommand(checkBrowserCmd)
}
