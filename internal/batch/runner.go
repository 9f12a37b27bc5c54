// Package batch runs affiliation extraction over every paper of an archive.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/matsen/affil/internal/affiliation"
	"github.com/matsen/affil/internal/metadata"
	"github.com/matsen/affil/internal/pdf"
	"github.com/matsen/affil/internal/reference"
)

// Processing steps, reported as error_step when a paper fails.
const (
	StepMetadata       = "metadata_loading"
	StepPDFLoading     = "pdf_loading"
	StepTextExtraction = "text_extraction"
	StepAffiliations   = "affiliations_extraction"
)

// ErrMissingPDF is recorded for papers whose PDF file does not exist.
var ErrMissingPDF = errors.New("paper doesn't have a PDF")

// TextSource returns the first-page text of the PDF at path.
type TextSource func(path string) (string, error)

// Summary counts the outcomes of a run.
type Summary struct {
	Papers      int `json:"papers"`
	Extracted   int `json:"extracted"`
	BadMetadata int `json:"bad_metadata"`
	MissingPDF  int `json:"missing_pdf"`
	TextFailed  int `json:"text_failed"`
	NoAlign     int `json:"no_alignment"`
}

// Options configures a Runner.
type Options struct {
	PDFDir string
	// ExcludeFailures drops failed papers from the results instead of
	// recording them with null affiliations.
	ExcludeFailures bool
	Source          TextSource
	Logger          *zap.Logger
}

// Runner extracts affiliations paper by paper.
type Runner struct {
	locator *affiliation.Locator
	opts    Options
	logger  *zap.Logger
}

// NewRunner creates a Runner. A nil Source reads PDFs with pdf.FirstPageText.
func NewRunner(locator *affiliation.Locator, opts Options) *Runner {
	if opts.Source == nil {
		opts.Source = pdf.FirstPageText
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if locator == nil {
		locator = affiliation.NewLocator(affiliation.WithLogger(logger))
	}
	return &Runner{locator: locator, opts: opts, logger: logger}
}

// Run processes papers in order. A failure on one paper is logged and
// recorded; it never stops the run. Only context cancellation does, in
// which case the results so far are returned with the context error.
func (r *Runner) Run(ctx context.Context, papers []reference.Paper) ([]reference.Result, Summary, error) {
	results := make([]reference.Result, 0, len(papers))
	summary := Summary{Papers: len(papers)}

	for _, paper := range papers {
		if err := ctx.Err(); err != nil {
			return results, summary, err
		}

		res := r.Process(paper)
		switch res.Step {
		case "":
			summary.Extracted++
		case StepMetadata:
			summary.BadMetadata++
		case StepPDFLoading:
			summary.MissingPDF++
		case StepTextExtraction:
			summary.TextFailed++
		case StepAffiliations:
			summary.NoAlign++
		}

		if !res.OK() && r.opts.ExcludeFailures {
			continue
		}
		results = append(results, res)
	}

	r.logger.Info("extraction finished",
		zap.Int("papers", summary.Papers),
		zap.Int("extracted", summary.Extracted),
		zap.Int("bad_metadata", summary.BadMetadata),
		zap.Int("missing_pdf", summary.MissingPDF),
		zap.Int("text_failed", summary.TextFailed),
		zap.Int("no_alignment", summary.NoAlign))

	return results, summary, nil
}

// Process extracts the affiliations of a single paper.
func (r *Runner) Process(paper reference.Paper) reference.Result {
	res := reference.Result{PaperID: paper.ID}
	log := r.logger.With(zap.String("paper_id", paper.ID))

	if paper.Invalid != nil {
		log.Error("cannot decode metadata entry",
			zap.String("error_step", StepMetadata),
			zap.Error(paper.Invalid))
		return failed(res, StepMetadata, paper.Invalid)
	}

	path := paper.PDFPath
	if path == "" {
		path = metadata.PDFPath(r.opts.PDFDir, paper.ID)
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			err = ErrMissingPDF
		}
		log.Error(fmt.Sprintf("%s doesn't have a PDF", paper.ID),
			zap.String("error_step", StepPDFLoading),
			zap.String("path", path),
			zap.Error(err))
		return failed(res, StepPDFLoading, err)
	}

	text, err := r.opts.Source(path)
	if err != nil {
		log.Error("cannot read first page",
			zap.String("error_step", StepTextExtraction),
			zap.String("path", path),
			zap.Error(err))
		return failed(res, StepTextExtraction, err)
	}

	affiliations, err := r.locator.Extract(paper.ID, text, paper.Authors)
	if err != nil {
		fields := []zap.Field{zap.String("error_step", StepAffiliations)}
		var ae *affiliation.AlignmentError
		if errors.As(err, &ae) {
			fields = append(fields, zap.Object("alignment", ae))
		}
		log.Error(affiliation.ErrNoAlignment.Error(), fields...)
		return failed(res, StepAffiliations, err)
	}

	log.Debug("affiliations extracted", zap.Strings("affiliations", affiliations))
	res.Affiliations = affiliations
	return res
}

func failed(res reference.Result, step string, err error) reference.Result {
	res.Affiliations = nil
	res.Step = step
	res.Error = err.Error()
	return res
}
