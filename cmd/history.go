package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent builds from the build cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, store, err := openBuildCache(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		builds, err := store.RecentBuilds(context.Background(), limit)
		if err != nil {
			return err
		}
		if len(builds) == 0 {
			fmt.Println("No builds recorded yet. Run `folio build` first.")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "STARTED\tENV\tSTATUS\tPAGES\tWRITTEN\tSKIPPED\tDURATION\tID")
		for _, b := range builds {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
				b.StartedAt.Local().Format(time.DateTime), b.Environment, b.Status,
				b.Pages, b.Written, b.Skipped, b.Duration(), b.ID)
			if b.Error != "" {
				fmt.Fprintf(tw, "\t\t\terror: %s\t\t\t\t\n", b.Error)
			}
		}
		return tw.Flush()
	},
}

func init() {
	historyCmd.Flags().Int("limit", 10, "number of builds to show")
	rootCmd.AddCommand(historyCmd)
}
