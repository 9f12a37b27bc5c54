package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(cleanCmd)
}

var cleanCmd = &cobra.Command{
	Use:   "clean <text>...",
	Short: "Print normalized text",
	Long: `Print each argument as the extractor sees it after normalization:
lowercased, initials dotted and encoding and name fixes applied.

Useful for checking why an author or header line does not match.

Examples:
  affil clean "José A García"
  affil clean --human "Fran c¸ois"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClean,
}

// CleanResult pairs an input with its normalized form.
type CleanResult struct {
	Input   string `json:"input"`
	Cleaned string `json:"cleaned"`
}

func runClean(cmd *cobra.Command, args []string) error {
	cleaner := newCleaner()

	results := make([]CleanResult, len(args))
	for i, arg := range args {
		results[i] = CleanResult{Input: arg, Cleaned: cleaner.Clean(arg)}
	}

	if humanOutput {
		for _, r := range results {
			fmt.Println(r.Cleaned)
		}
		return nil
	}
	return outputJSON(results)
}
