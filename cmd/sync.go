package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/freakstore-tools/freaksync/internal/utils"
	"github.com/freakstore-tools/freaksync/pkg/easystore"
	"github.com/freakstore-tools/freaksync/pkg/export"
	"github.com/freakstore-tools/freaksync/pkg/storage"
	"github.com/freakstore-tools/freaksync/pkg/syncer"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync [url ...]",
	Short: "Push source discounts to the matched EasyStore products",
	Long: `Fetches each product URL, reconciles its variants against the SKU mapping
sheets, and applies the page's discount to every variant of the matched
EasyStore product. URLs are processed one at a time; a failed URL never
aborts the rest of the batch.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		urlsFile, _ := cmd.Flags().GetString("urls")
		outPath, _ := cmd.Flags().GetString("out")
		dbPath, _ := cmd.Flags().GetString("dbpath")
		extraMarkdown, _ := cmd.Flags().GetBool("extra-markdown")

		urls := args
		if urlsFile != "" {
			fromFile, err := readURLList(urlsFile)
			if err != nil {
				return fmt.Errorf("read url list: %w", err)
			}
			urls = append(urls, fromFile...)
		}
		if len(urls) == 0 {
			return fmt.Errorf("no URLs given; pass them as arguments or via --urls")
		}

		apiBase := viper.GetString("easystore.api_base")
		token := viper.GetString("easystore.token")
		if apiBase == "" || token == "" {
			return fmt.Errorf("easystore.api_base and easystore.token must be set in the config")
		}

		table, err := loadMappingTable()
		if err != nil {
			return err
		}
		utils.Log.Infof("loaded %d SKU mappings", table.Len())

		fetcher, err := newFetcher()
		if err != nil {
			return err
		}

		client := easystore.New(apiBase, token,
			time.Duration(viper.GetInt("easystore.timeout_seconds"))*time.Second)

		s := &syncer.Syncer{
			Fetcher:       fetcher,
			Table:         table,
			Platform:      client,
			ExtraMarkdown: extraMarkdown,
		}

		results := s.SyncBatch(context.Background(), urls)

		if dbPath != "" {
			db, err := storage.Open(dbPath)
			if err != nil {
				return fmt.Errorf("open results db: %w", err)
			}
			defer db.Close()
			runID, err := db.RecordRun(context.Background(), results)
			if err != nil {
				return fmt.Errorf("record run: %w", err)
			}
			utils.Log.Infof("recorded run %d in %s", runID, dbPath)
		}

		if outPath != "" {
			if err := export.WriteResults(outPath, results); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			utils.Log.Infof("wrote %s", outPath)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().StringP("urls", "u", "", "File with one product URL per line")
	syncCmd.Flags().StringP("out", "o", "", "Write results to this xlsx file")
	syncCmd.Flags().StringP("dbpath", "", "freaksync.sqlite", "Record results in this SQLite database (empty to skip)")
	syncCmd.Flags().BoolP("extra-markdown", "", false, "Apply the additional 15% markdown to discounted prices above 5000")
}
