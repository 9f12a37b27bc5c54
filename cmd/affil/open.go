package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/affil/internal/pdf"
)

var openPDFDir string

func init() {
	openCmd.Flags().StringVar(&openPDFDir, "pdf-dir", "", "PDF directory (default: pdf_dir from config)")
	rootCmd.AddCommand(openCmd)
}

var openCmd = &cobra.Command{
	Use:   "open <paper_id>...",
	Short: "Open papers' PDFs in the configured viewer",
	Long: `Open papers' PDFs in the configured viewer for manual review.

PDFs are resolved as <pdf_dir>/<paper_id>.pdf. The viewer is chosen by
pdf_reader in the config file (system, skim, preview, zathura, evince,
okular).

Examples:
  affil open smith16
  affil open --pdf-dir pdfs/ smith16 doe16`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOpen,
}

// OpenResult is the response for the open command.
type OpenResult struct {
	Status string   `json:"status"`
	Opened []string `json:"opened"`
}

func runOpen(cmd *cobra.Command, args []string) error {
	dir := firstNonEmpty(openPDFDir, cfg.PDFDir)
	if dir == "" {
		exitWithError(ExitConfigError, "%s", configHint())
	}

	opener := pdf.NewOpener(dir, cfg.PDFReader)

	// Resolve everything before launching any viewer
	paths := make([]string, len(args))
	for i, id := range args {
		path, err := opener.ResolvePath(id)
		if err != nil {
			exitWithError(ExitDataError, "%v", err)
		}
		paths[i] = path
	}

	for _, path := range paths {
		if err := opener.Open(path); err != nil {
			exitWithError(ExitError, "opening %s: %v", path, err)
		}
	}

	if humanOutput {
		for _, path := range paths {
			fmt.Printf("Opened %s\n", path)
		}
		return nil
	}
	return outputJSON(OpenResult{Status: "opened", Opened: paths})
}
