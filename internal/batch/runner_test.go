package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/matsen/affil/internal/affiliation"
	"github.com/matsen/affil/internal/reference"
)

var errUnreadable = errors.New("unreadable content stream")

// fakeArchive writes placeholder PDFs for every id in texts and returns the
// directory and a TextSource serving the given first-page texts.
func fakeArchive(t *testing.T, texts map[string]string) (string, TextSource) {
	t.Helper()
	dir := t.TempDir()
	byPath := make(map[string]string)
	for id, text := range texts {
		path := filepath.Join(dir, id+".pdf")
		if err := os.WriteFile(path, []byte("%PDF-1.4"), 0644); err != nil {
			t.Fatal(err)
		}
		byPath[path] = text
	}
	return dir, func(path string) (string, error) {
		text := byPath[path]
		if text == "<broken>" {
			return "", errUnreadable
		}
		return text, nil
	}
}

func testPapers() []reference.Paper {
	authors := []reference.Author{{"John", "Smith"}, {"Jane", "Doe"}}
	return []reference.Paper{
		{ID: "p1", Authors: authors},
		{ID: "p2", Authors: authors},
		{ID: "p3", Authors: authors},
		{ID: "p4", Authors: authors},
	}
}

func testArchive(t *testing.T) (string, TextSource) {
	return fakeArchive(t, map[string]string{
		"p1": "A Title\nJohn Smith, Jane Doe\nSome University\nAbstract\nBody",
		// p2 has no PDF
		"p3": "A Title\nSomebody Else\nElsewhere",
		"p4": "<broken>",
	})
}

func TestRun_OneRowPerPaper(t *testing.T) {
	dir, source := testArchive(t)
	r := NewRunner(nil, Options{PDFDir: dir, Source: source})

	results, summary, err := r.Run(context.Background(), testPapers())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []reference.Result{
		{PaperID: "p1", Affiliations: []string{"Some University"}},
		{PaperID: "p2", Step: StepPDFLoading, Error: ErrMissingPDF.Error()},
		{PaperID: "p3", Step: StepAffiliations},
		{PaperID: "p4", Step: StepTextExtraction, Error: errUnreadable.Error()},
	}
	if len(results) != len(want) {
		t.Fatalf("Run() returned %d results, want %d", len(results), len(want))
	}
	for i, w := range want {
		got := results[i]
		if got.PaperID != w.PaperID || got.Step != w.Step {
			t.Errorf("results[%d] = %s/%q, want %s/%q", i, got.PaperID, got.Step, w.PaperID, w.Step)
		}
		if diff := cmp.Diff(w.Affiliations, got.Affiliations); diff != "" {
			t.Errorf("results[%d].Affiliations mismatch (-want +got):\n%s", i, diff)
		}
		if w.Error != "" && got.Error != w.Error {
			t.Errorf("results[%d].Error = %q, want %q", i, got.Error, w.Error)
		}
	}
	if results[2].Error == "" {
		t.Error("alignment failure should record its error message")
	}

	wantSummary := Summary{Papers: 4, Extracted: 1, MissingPDF: 1, TextFailed: 1, NoAlign: 1}
	if summary != wantSummary {
		t.Errorf("Summary = %+v, want %+v", summary, wantSummary)
	}
}

func TestRun_ExcludeFailures(t *testing.T) {
	dir, source := testArchive(t)
	r := NewRunner(nil, Options{PDFDir: dir, Source: source, ExcludeFailures: true})

	results, summary, err := r.Run(context.Background(), testPapers())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(results) != 1 || results[0].PaperID != "p1" {
		t.Errorf("Run() = %+v, want only p1", results)
	}
	if summary.Papers != 4 {
		t.Errorf("Summary.Papers = %d, want 4", summary.Papers)
	}
}

func TestRun_LogsFailures(t *testing.T) {
	dir, source := testArchive(t)
	core, logs := observer.New(zapcore.InfoLevel)
	r := NewRunner(nil, Options{PDFDir: dir, Source: source, Logger: zap.New(core)})

	if _, _, err := r.Run(context.Background(), testPapers()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	errorsByStep := make(map[string]string)
	for _, e := range logs.FilterLevelExact(zapcore.ErrorLevel).All() {
		ctx := e.ContextMap()
		errorsByStep[ctx["error_step"].(string)] = ctx["paper_id"].(string)
	}

	want := map[string]string{
		StepPDFLoading:     "p2",
		StepAffiliations:   "p3",
		StepTextExtraction: "p4",
	}
	if diff := cmp.Diff(want, errorsByStep); diff != "" {
		t.Errorf("error log entries mismatch (-want +got):\n%s", diff)
	}

	align := logs.FilterField(zap.String("error_step", StepAffiliations)).All()
	if len(align) != 1 {
		t.Fatalf("got %d alignment log entries, want 1", len(align))
	}
	if _, ok := align[0].ContextMap()["alignment"]; !ok {
		t.Error("alignment log entry missing diagnostic context")
	}

	if logs.FilterMessage("extraction finished").Len() != 1 {
		t.Error("missing summary log entry")
	}
}

func TestRun_ExplicitPDFPath(t *testing.T) {
	dir, source := fakeArchive(t, map[string]string{
		"renamed": "John Smith\nSome University",
	})
	paper := reference.Paper{
		ID:      "p1",
		Authors: []reference.Author{{"John", "Smith"}},
		PDFPath: filepath.Join(dir, "renamed.pdf"),
	}

	res := NewRunner(nil, Options{Source: source}).Process(paper)
	if !res.OK() {
		t.Fatalf("Process() failed at %s: %s", res.Step, res.Error)
	}
}

func TestRun_Cancelled(t *testing.T) {
	dir, source := testArchive(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, _, err := NewRunner(nil, Options{PDFDir: dir, Source: source}).Run(ctx, testPapers())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if len(results) != 0 {
		t.Errorf("Run() returned %d results after cancellation, want 0", len(results))
	}
}

func TestRun_CustomLocator(t *testing.T) {
	dir, source := fakeArchive(t, map[string]string{
		"p1": "John Smith\nDept of Physics\nUniv A, Finland",
	})
	loc := affiliation.NewLocator(affiliation.WithCountries([]string{"finland"}))
	papers := []reference.Paper{{ID: "p1", Authors: []reference.Author{{"John", "Smith"}}}}

	results, _, err := NewRunner(loc, Options{PDFDir: dir, Source: source}).Run(context.Background(), papers)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if diff := cmp.Diff([]string{"Dept of Physics, Univ A, Finland"}, results[0].Affiliations); diff != "" {
		t.Errorf("Affiliations mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_InvalidMetadataKeepsRow(t *testing.T) {
	dir, source := testArchive(t)
	papers := append(testPapers()[:1], reference.Paper{ID: "p0", Invalid: errUnreadable})

	results, summary, err := NewRunner(nil, Options{PDFDir: dir, Source: source}).Run(context.Background(), papers)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Run() returned %d results, want one per paper", len(results))
	}
	bad := results[1]
	if bad.PaperID != "p0" || bad.OK() || bad.Step != StepMetadata || bad.Error != errUnreadable.Error() {
		t.Errorf("invalid paper result = %+v", bad)
	}
	if summary.BadMetadata != 1 || summary.Extracted != 1 {
		t.Errorf("Summary = %+v, want 1 extracted and 1 bad metadata", summary)
	}
}
