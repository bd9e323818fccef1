package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/freakstore-tools/freaksync/pkg/storage"
)

// resultsCmd represents the results command
var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Review recorded sync runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, _ := cmd.Flags().GetString("dbpath")
		runID, _ := cmd.Flags().GetInt64("run")
		limit, _ := cmd.Flags().GetInt("limit")

		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return fmt.Errorf("database file not found: %s", dbPath)
		}

		db, err := storage.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		defer w.Flush()

		if runID > 0 {
			results, err := db.RunResults(context.Background(), runID)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, "STATUS\tURL\tMATCHED\tTARGET\tDISCOUNT\tUPDATED\tERROR")
			for _, r := range results {
				status := "OK"
				if !r.Success {
					status = "FAILED"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.0f%%\t%d/%d\t%s\n",
					status, r.URL, r.MatchedSKU, r.TargetSKU, r.DiscountPct,
					r.UpdatedVariants, r.TotalVariants, r.Error)
			}
			return nil
		}

		runs, err := db.RecentRuns(context.Background(), limit)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "RUN\tSTARTED\tTOTAL\tOK\tFAILED")
		for _, r := range runs {
			fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\n",
				r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Total, r.Succeeded, r.Failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resultsCmd)
	resultsCmd.Flags().StringP("dbpath", "", "freaksync.sqlite", "SQLite database with recorded runs")
	resultsCmd.Flags().Int64P("run", "r", 0, "Show the per-URL results of one run")
	resultsCmd.Flags().IntP("limit", "n", 20, "How many runs to list")
}
