package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matsen/affil/internal/affiliation"
	"github.com/matsen/affil/internal/batch"
	"github.com/matsen/affil/internal/config"
	"github.com/matsen/affil/internal/metadata"
	"github.com/matsen/affil/internal/normalize"
	"github.com/matsen/affil/internal/reference"
	"github.com/matsen/affil/internal/storage"
)

var (
	extractJSONL           string
	extractExcludeFailures bool
)

func init() {
	extractCmd.Flags().StringVar(&extractJSONL, "jsonl", "", "Also write full results (with failure steps) as JSONL")
	extractCmd.Flags().BoolVar(&extractExcludeFailures, "exclude-failures", false, "Leave failed papers out of the table")
	rootCmd.AddCommand(extractCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract <metadata.json> [<countries.csv>] <pdf_dir> <output.tsv>",
	Short: "Extract affiliations for every paper of an archive",
	Long: `Extract affiliations for every paper listed in the metadata file.

Each paper's PDF is read from <pdf_dir>/<paper_id>.pdf. The output table has
one row per paper: paper_id and a JSON array of affiliation lines, or an
empty cell when extraction failed. Failures are logged with the paper id and
the failing step and never stop the run.

The optional countries CSV (or countries_file from the config) enables
joining affiliations that were wrapped over several lines.

Examples:
  affil extract papers.json pdfs/ affiliations.tsv
  affil extract -v -l run.log papers.json countries.csv pdfs/ affiliations.tsv
  affil extract papers.json pdfs/ out.tsv --jsonl results.jsonl`,
	Args: cobra.RangeArgs(3, 4),
	RunE: runExtract,
}

// extractArgs holds the positional arguments of extract.
type extractArgs struct {
	Metadata  string
	Countries string
	PDFDir    string
	Output    string
}

// parseExtractArgs maps 3 or 4 positional arguments; with 3 the countries
// file falls back to the configured one.
func parseExtractArgs(args []string, cfg *config.Config) (extractArgs, error) {
	switch len(args) {
	case 3:
		a := extractArgs{Metadata: args[0], PDFDir: args[1], Output: args[2]}
		if cfg != nil {
			a.Countries = cfg.CountriesFile
		}
		return a, nil
	case 4:
		return extractArgs{Metadata: args[0], Countries: args[1], PDFDir: args[2], Output: args[3]}, nil
	default:
		return extractArgs{}, fmt.Errorf("expected 3 or 4 arguments, got %d", len(args))
	}
}

// ExtractResult is the response for the extract command.
type ExtractResult struct {
	Status  string        `json:"status"`
	Output  string        `json:"output"`
	JSONL   string        `json:"jsonl,omitempty"`
	Rows    int           `json:"rows"`
	Fixes   int           `json:"name_fixes"`
	Summary batch.Summary `json:"summary"`
}

func runExtract(cmd *cobra.Command, args []string) error {
	a, err := parseExtractArgs(args, cfg)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if info, err := os.Stat(a.PDFDir); err != nil || !info.IsDir() {
		exitWithError(ExitConfigError, "PDF directory not found: %s", a.PDFDir)
	}

	// Tags every entry of this run; log files are appended across runs.
	logger = logger.With(zap.String("run_id", uuid.NewString()))

	papers := mustLoadPapers(a.Metadata)
	metadata.ResolvePDFs(papers, a.PDFDir)

	cleaner := newCleaner()
	logger.Debug("cleaner ready", zap.Int("fixes", len(cleaner.Fixes())))
	opts := []affiliation.Option{affiliation.WithCleaner(cleaner), affiliation.WithLogger(logger)}
	if a.Countries != "" {
		countries, err := affiliation.LoadCountries(a.Countries, cleaner)
		if err != nil {
			exitWithError(ExitConfigError, "loading countries: %v", err)
		}
		logger.Info("country guard enabled", zap.Int("countries", len(countries)))
		opts = append(opts, affiliation.WithCountries(countries))
	}

	runner := batch.NewRunner(affiliation.NewLocator(opts...), batch.Options{
		PDFDir:          a.PDFDir,
		ExcludeFailures: extractExcludeFailures,
		Logger:          logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, summary, runErr := runner.Run(ctx, papers)
	if runErr != nil {
		logger.Warn("extraction interrupted, writing partial results", zap.Error(runErr))
	}

	if err := storage.WriteTableFile(a.Output, results); err != nil {
		exitWithError(ExitError, "writing table: %v", err)
	}
	if extractJSONL != "" {
		if err := storage.WriteResultsJSONL(extractJSONL, results); err != nil {
			exitWithError(ExitError, "writing JSONL: %v", err)
		}
	}

	if humanOutput {
		fmt.Printf("Wrote %d rows to %s\n", len(results), a.Output)
		fmt.Printf("  extracted: %d/%d\n", summary.Extracted, summary.Papers)
		fmt.Printf("  bad metadata: %d, missing PDF: %d, unreadable: %d, no alignment: %d\n",
			summary.BadMetadata, summary.MissingPDF, summary.TextFailed, summary.NoAlign)
	} else {
		status := "complete"
		if runErr != nil {
			status = "interrupted"
		}
		outputJSON(ExtractResult{
			Status:  status,
			Output:  a.Output,
			JSONL:   extractJSONL,
			Rows:    len(results),
			Fixes:   len(cleaner.Fixes()),
			Summary: summary,
		})
	}

	if runErr != nil {
		closeLog()
		os.Exit(ExitError)
	}
	return nil
}

// mustLoadPapers reads the metadata file. Entries that fail to decode come
// back marked Invalid and are reported per paper; only a file that yields
// nothing at all is fatal.
func mustLoadPapers(path string) []reference.Paper {
	papers, errs := metadata.Load(path)
	if len(errs) > 0 {
		logger.Debug("metadata entries failed to decode", zap.Int("count", len(errs)))
	}
	if len(papers) == 0 && len(errs) > 0 {
		exitWithError(ExitDataError, "%v", errs[0])
	}
	return papers
}

// newCleaner returns a cleaner with the configured extra name fixes.
func newCleaner() *normalize.Cleaner {
	if cfg == nil {
		return normalize.NewCleaner()
	}
	return normalize.NewCleaner(cfg.NameFixes...)
}
