package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/affil/internal/affiliation"
	"github.com/matsen/affil/internal/pdf"
	"github.com/matsen/affil/internal/reference"
	"github.com/matsen/affil/internal/storage"
)

var (
	showCountries string
	showDB        string
)

func init() {
	showCmd.Flags().StringVar(&showCountries, "countries", "", "Countries CSV enabling the line-joining guard (default: countries_file)")
	showCmd.Flags().StringVar(&showDB, "db", "", "Also show the row stored for this paper in the search index")
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <metadata.json> <pdf_dir> <paper_id>",
	Short: "Show the first page and extraction result for one paper",
	Long: `Show the reconstructed first-page lines of one paper together with the
authors from the metadata and the extracted affiliations.

On an alignment failure the cleaned author variants and header lines are
shown so the mismatch can be fixed with a name_fixes entry.

With --db the stored row from the search index is shown next to the fresh
result, which makes it easy to see whether a fix changed the outcome.

Examples:
  affil show papers.json pdfs/ smith16
  affil show --human papers.json pdfs/ smith16
  affil show --db ~/.cache/affil/affil.db papers.json pdfs/ smith16`,
	Args: cobra.ExactArgs(3),
	RunE: runShow,
}

// ShowResult is the response for the show command.
type ShowResult struct {
	PaperID      string   `json:"paper_id"`
	Title        string   `json:"title,omitempty"`
	Authors      []string `json:"authors"`
	PDF          string   `json:"pdf"`
	Lines        []string `json:"lines"`
	Affiliations []string `json:"affiliations"`
	Error        string   `json:"error,omitempty"`

	CleanedAuthors []string `json:"cleaned_authors,omitempty"`
	CleanedHeader  []string `json:"cleaned_header,omitempty"`

	Indexed *reference.Result `json:"indexed,omitempty"`
}

func runShow(cmd *cobra.Command, args []string) error {
	metaPath, pdfDir, paperID := args[0], args[1], args[2]

	paper, ok := findPaper(mustLoadPapers(metaPath), paperID)
	if !ok {
		exitWithError(ExitDataError, "paper not found in metadata: %s", paperID)
	}
	if paper.Invalid != nil {
		exitWithError(ExitDataError, "%v", paper.Invalid)
	}

	path, err := pdf.NewOpener(pdfDir, "").ResolvePath(paperID)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	text, err := pdf.FirstPageText(path)
	if err != nil {
		exitWithError(ExitDataError, "reading %s: %v", path, err)
	}

	cleaner := newCleaner()
	opts := []affiliation.Option{affiliation.WithCleaner(cleaner), affiliation.WithLogger(logger)}
	if countriesPath := firstNonEmpty(showCountries, cfg.CountriesFile); countriesPath != "" {
		countries, err := affiliation.LoadCountries(countriesPath, cleaner)
		if err != nil {
			exitWithError(ExitConfigError, "loading countries: %v", err)
		}
		opts = append(opts, affiliation.WithCountries(countries))
	}

	result := ShowResult{
		PaperID: paper.ID,
		Title:   paper.Title,
		Authors: paper.AuthorNames(),
		PDF:     path,
		Lines:   strings.Split(text, "\n"),
	}

	affiliations, err := affiliation.NewLocator(opts...).Extract(paper.ID, text, paper.Authors)
	if err != nil {
		result.Error = err.Error()
		var ae *affiliation.AlignmentError
		if errors.As(err, &ae) {
			result.CleanedAuthors = ae.CleanedAuthors
			result.CleanedHeader = ae.CleanedHeader
		}
	}
	result.Affiliations = affiliations

	if showDB != "" {
		indexed, err := indexedResult(showDB, paper.ID)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		result.Indexed = indexed
	}

	if humanOutput {
		printShowHuman(result)
		return nil
	}
	return outputJSON(result)
}

func printShowHuman(r ShowResult) {
	fmt.Printf("%s: %s\n", r.PaperID, r.Title)
	fmt.Printf("  Authors: %s\n", strings.Join(r.Authors, ", "))
	fmt.Printf("  PDF: %s\n\n", r.PDF)

	fmt.Println("First page:")
	for i, line := range r.Lines {
		fmt.Printf("  %3d  %s\n", i+1, line)
	}

	fmt.Println("\nAffiliations:")
	fmt.Println(formatAffiliations(r.Affiliations, "  "))

	if r.Error != "" {
		fmt.Printf("\nError: %s\n", r.Error)
		if len(r.CleanedAuthors) > 0 {
			fmt.Printf("  Author variants: %s\n", strings.Join(r.CleanedAuthors, " | "))
		}
		for _, line := range r.CleanedHeader {
			fmt.Printf("  | %s\n", line)
		}
	}

	if r.Indexed != nil {
		fmt.Println("\nIndexed:")
		fmt.Println(formatAffiliations(r.Indexed.Affiliations, "  "))
		if r.Indexed.Error != "" {
			fmt.Printf("  (%s: %s)\n", r.Indexed.Step, r.Indexed.Error)
		}
	}
}

// indexedResult looks up a paper in the search index. A paper missing from
// the index is reported as a result with no affiliations and no error.
func indexedResult(dbPath, id string) (*reference.Result, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("index not found: %s", dbPath)
	}
	db, err := storage.OpenDB(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	res, err := db.GetByID(id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = &reference.Result{PaperID: id}
	}
	return res, nil
}

func findPaper(papers []reference.Paper, id string) (reference.Paper, bool) {
	for _, p := range papers {
		if p.ID == id {
			return p, true
		}
	}
	return reference.Paper{}, false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
