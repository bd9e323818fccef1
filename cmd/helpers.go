package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/freakstore-tools/freaksync/pkg/fetch"
	"github.com/freakstore-tools/freaksync/pkg/mapping"
	"github.com/freakstore-tools/freaksync/pkg/syncer"
)

// readURLList reads one URL per line, skipping blanks and # comments.
func readURLList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}

// newFetcher builds the configured fetch collaborator.
func newFetcher() (syncer.Fetcher, error) {
	timeout := time.Duration(viper.GetInt("fetch.timeout_seconds")) * time.Second
	switch mode := viper.GetString("fetch.mode"); mode {
	case "http", "":
		return fetch.NewHTTP(timeout), nil
	case "browser":
		wait := time.Duration(viper.GetInt("fetch.browser_wait_seconds")) * time.Second
		return fetch.NewBrowser(wait, viper.GetString("fetch.user_data_dir")), nil
	default:
		return nil, fmt.Errorf("unknown fetch.mode %q (available: http, browser)", mode)
	}
}

// loadMappingTable loads the two reference workbooks named in the config.
func loadMappingTable() (*mapping.Table, error) {
	return mapping.Load(viper.GetString("mapping.reference"), viper.GetString("mapping.variants"))
}
