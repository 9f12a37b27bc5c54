package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/affil/internal/storage"
)

var rebuildDB string

func init() {
	rebuildCmd.Flags().StringVar(&rebuildDB, "db", "", "SQLite index path (default: db_path or the user cache directory)")
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild <results.jsonl|results.tsv>",
	Short: "Rebuild the search index from extraction results",
	Long: `Rebuild the SQLite search index from a results JSONL file written by
'affil extract --jsonl', or from the TSV table that extract always writes.

The results file is the source of truth; the index can be deleted and
rebuilt at any time. A paper listed twice keeps its last row.`,
	Args: cobra.ExactArgs(1),
	RunE: runRebuild,
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status string        `json:"status"`
	DB     string        `json:"db"`
	Stats  storage.Stats `json:"stats"`
}

func runRebuild(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(args[0]); err != nil {
		exitWithError(ExitDataError, "results file not found: %s", args[0])
	}

	dbPath := firstNonEmpty(rebuildDB, cfg.DatabasePath())
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		exitWithError(ExitError, "creating index directory: %v", err)
	}

	db := mustOpenDatabase(dbPath)
	defer db.Close()

	if _, err := rebuildIndex(db, args[0]); err != nil {
		exitWithError(ExitDataError, "rebuilding index: %v", err)
	}

	stats, err := db.Stats()
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		fmt.Printf("Rebuilt %s with %d papers (%d failed) and %d affiliations\n",
			dbPath, stats.Papers, stats.Failed, stats.Affiliations)
		return nil
	}
	return outputJSON(RebuildResult{Status: "rebuilt", DB: dbPath, Stats: stats})
}

// rebuildIndex loads a results file into db, picking the reader by extension.
func rebuildIndex(db *storage.DB, path string) (int, error) {
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		results, err := storage.ReadTableFile(path)
		if err != nil {
			return 0, fmt.Errorf("reading table: %w", err)
		}
		return db.RebuildFromResults(results)
	}
	return db.RebuildFromJSONL(path)
}

// mustOpenDatabase opens the SQLite index, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(path string) *storage.DB {
	db, err := storage.OpenDB(path)
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}
