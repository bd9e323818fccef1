package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/freakstore-tools/freaksync/internal/utils"
	"github.com/freakstore-tools/freaksync/pkg/export"
	"github.com/freakstore-tools/freaksync/pkg/extract"
)

// stockCmd represents the stock command
var stockCmd = &cobra.Command{
	Use:   "stock",
	Short: "Export the stock table of tracked product URLs",
	Long: `Fetches every tracked URL and writes one row per variant (identifier and
nominal stock quantity) to an xlsx workbook. Variants with an unknown stock
label get an empty quantity cell, never a zero.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		urlsFile, _ := cmd.Flags().GetString("urls")
		outPath, _ := cmd.Flags().GetString("out")

		urls, err := readURLList(urlsFile)
		if err != nil {
			return fmt.Errorf("read url list: %w", err)
		}
		if len(urls) == 0 {
			return fmt.Errorf("no URLs in %s", urlsFile)
		}

		fetcher, err := newFetcher()
		if err != nil {
			return err
		}

		var rows []export.StockRow
		for _, url := range urls {
			markup, err := fetcher.Fetch(context.Background(), url)
			if err != nil {
				utils.Log.Errorf("FAIL %s: %v", url, err)
				continue
			}
			snap, err := extract.Extract(markup)
			if err != nil {
				utils.Log.Errorf("FAIL %s: %v", url, err)
				continue
			}
			if snap.Name == "" {
				utils.Log.Errorf("FAIL %s: page has no product title", url)
				continue
			}
			urlRows := export.BuildStockRows(snap)
			rows = append(rows, urlRows...)
			utils.Log.Infof("OK %s: %d variants", url, len(urlRows))
		}

		if err := export.WriteStockTable(outPath, rows); err != nil {
			return fmt.Errorf("write %s: %w", outPath, err)
		}
		utils.Log.Infof("wrote %d rows to %s", len(rows), outPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stockCmd)
	stockCmd.Flags().StringP("urls", "u", "tracked_urls.txt", "File with one product URL per line")
	stockCmd.Flags().StringP("out", "o", "stock_output.xlsx", "Output xlsx file")
}
