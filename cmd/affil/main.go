// Package main provides the affil CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matsen/affil/internal/config"
	"github.com/matsen/affil/internal/logging"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	verbosity   int
	logFile     string

	cfg      *config.Config
	logger   = zap.NewNop()
	closeLog = func() {}
)

func main() {
	err := rootCmd.Execute()
	closeLog()
	if err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "affil",
	Short: "Extract author affiliations from conference paper PDFs",
	Long: `affil reads the first page of every paper in a conference archive,
finds the author line(s) named in the metadata and returns the lines that
follow them as the paper's affiliations.

Results are written as a TSV table; a JSONL copy can be indexed in SQLite
for full-text search over institutions.
Informational commands output JSON by default; use --human for text.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbosity", "v", "Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().StringVarP(&logFile, "log-file", "l", "", "Also append JSON log entries to this file")
	rootCmd.Version = Version
}

// setup loads .env and the config file, then builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	config.LoadEnv()

	var err error
	cfg, err = config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	path := logFile
	if path == "" {
		path = cfg.LogFile
	}
	l, closeFn, err := logging.New(verbosity, path)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	logger, closeLog = l, closeFn
	return nil
}
