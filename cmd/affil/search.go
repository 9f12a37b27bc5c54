package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/affil/internal/storage"
)

var (
	searchDB    string
	searchLimit int
)

func init() {
	searchCmd.Flags().StringVar(&searchDB, "db", "", "SQLite index path (default: db_path or the user cache directory)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", DefaultSearchLimit, "Maximum results to return")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search extracted affiliations",
	Long: `Full-text search over the indexed affiliation lines.

Plain words are matched anywhere in a line (all must occur); queries with
punctuation are matched as a phrase. Run 'affil rebuild' first.

Examples:
  affil search cambridge
  affil search "max-planck"
  affil search "university OR universidad" --limit 10`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchLimit <= 0 {
		exitWithError(ExitError, "--limit must be positive")
	}

	dbPath := firstNonEmpty(searchDB, cfg.DatabasePath())
	if _, err := os.Stat(dbPath); err != nil {
		exitWithError(ExitConfigError, "index not found: %s\n\nRun 'affil rebuild <results.jsonl>' to create it.", dbPath)
	}

	db := mustOpenDatabase(dbPath)
	defer db.Close()

	count, err := db.Count()
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if count == 0 {
		exitWithError(ExitConfigError, "index is empty: %s\n\nRun 'affil rebuild <results.jsonl>' to fill it.", dbPath)
	}

	hits, err := db.Search(args[0], searchLimit)
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}

	if humanOutput {
		printHitsHuman(hits)
		return nil
	}
	if hits == nil {
		hits = []storage.Hit{}
	}
	return outputJSON(hits)
}

func printHitsHuman(hits []storage.Hit) {
	if len(hits) == 0 {
		fmt.Println("No matches")
		return
	}
	for _, h := range hits {
		fmt.Printf("%-20s %s\n", h.PaperID, h.Affiliation)
	}
}
