package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matsen/affil/internal/reference"
)

// setupTestDB creates a test database rebuilt from a JSONL file of test results.
func setupTestDB(t *testing.T) (*DB, string) {
	t.Helper()

	tmpDir := t.TempDir()
	jsonlPath := filepath.Join(tmpDir, "results.jsonl")
	if err := WriteResultsJSONL(jsonlPath, testResults()); err != nil {
		t.Fatalf("Failed to write test JSONL: %v", err)
	}

	db, err := OpenDB(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.RebuildFromJSONL(jsonlPath); err != nil {
		t.Fatalf("Failed to rebuild DB: %v", err)
	}
	return db, tmpDir
}

func TestOpenDB_CreatesSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("OpenDB() did not create database file")
	}
}

func TestDB_RebuildFromJSONL(t *testing.T) {
	db, tmpDir := setupTestDB(t)

	stats, err := db.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if want := (Stats{Papers: 4, Failed: 1, Affiliations: 3}); stats != want {
		t.Errorf("Stats() = %+v, want %+v", stats, want)
	}

	// Rebuild replaces everything
	jsonlPath := filepath.Join(tmpDir, "results.jsonl")
	if err := WriteResultsJSONL(jsonlPath, testResults()[:1]); err != nil {
		t.Fatalf("WriteResultsJSONL() error = %v", err)
	}
	rebuilt, err := db.RebuildFromJSONL(jsonlPath)
	if err != nil {
		t.Fatalf("RebuildFromJSONL() error = %v", err)
	}
	if rebuilt != 1 {
		t.Errorf("RebuildFromJSONL() = %d, want 1", rebuilt)
	}
	if count, _ := db.Count(); count != 1 {
		t.Errorf("Count() after rebuild = %d, want 1", count)
	}
	if hits, _ := db.Search("chile", 10); len(hits) != 0 {
		t.Errorf("Search() after rebuild returned stale hits: %v", hits)
	}
}

func TestDB_RebuildDuplicatePaperID(t *testing.T) {
	db, tmpDir := setupTestDB(t)

	// Appending a re-run to an existing JSONL repeats paper IDs.
	rerun := reference.Result{PaperID: "baker16", Affiliations: []string{"Universidad de Chile"}}
	jsonlPath := filepath.Join(tmpDir, "results.jsonl")
	if err := WriteResultsJSONL(jsonlPath, append(testResults(), rerun)); err != nil {
		t.Fatalf("WriteResultsJSONL() error = %v", err)
	}

	rebuilt, err := db.RebuildFromJSONL(jsonlPath)
	if err != nil {
		t.Fatalf("RebuildFromJSONL() error = %v", err)
	}
	if rebuilt != 4 {
		t.Errorf("RebuildFromJSONL() = %d, want 4", rebuilt)
	}

	got, err := db.GetByID("baker16")
	if err != nil || got == nil {
		t.Fatalf("GetByID(baker16) = %v, %v", got, err)
	}
	if diff := cmp.Diff(&rerun, got); diff != "" {
		t.Errorf("GetByID(baker16) mismatch, want last result (-want +got):\n%s", diff)
	}
	if stats, _ := db.Stats(); stats.Failed != 0 {
		t.Errorf("Stats().Failed = %d, want 0 after re-run", stats.Failed)
	}
}

func TestDedupeResults(t *testing.T) {
	in := []reference.Result{
		{PaperID: "a", Step: "pdf_loading"},
		{PaperID: "b", Affiliations: []string{"B"}},
		{PaperID: "a", Affiliations: []string{"A"}},
	}
	want := []reference.Result{
		{PaperID: "a", Affiliations: []string{"A"}},
		{PaperID: "b", Affiliations: []string{"B"}},
	}
	if diff := cmp.Diff(want, dedupeResults(in)); diff != "" {
		t.Errorf("dedupeResults() mismatch (-want +got):\n%s", diff)
	}
}

func TestDB_GetByID(t *testing.T) {
	db, _ := setupTestDB(t)
	want := testResults()

	for _, w := range want {
		got, err := db.GetByID(w.PaperID)
		if err != nil {
			t.Fatalf("GetByID(%s) error = %v", w.PaperID, err)
		}
		if got == nil {
			t.Fatalf("GetByID(%s) = nil", w.PaperID)
		}
		if diff := cmp.Diff(w, *got); diff != "" {
			t.Errorf("GetByID(%s) mismatch (-want +got):\n%s", w.PaperID, diff)
		}
	}

	got, err := db.GetByID("nobody")
	if err != nil || got != nil {
		t.Errorf("GetByID(nobody) = %v, %v; want nil, nil", got, err)
	}
}

func TestDB_Search(t *testing.T) {
	db, _ := setupTestDB(t)

	tests := []struct {
		query string
		want  []Hit
	}{
		{"cambridge", []Hit{{PaperID: "abbott16", Position: 0, Affiliation: "University of Cambridge"}}},
		{"DeepMind", []Hit{{PaperID: "abbott16", Position: 1, Affiliation: "Google DeepMind"}}},
		{"santiago chile", []Hit{{PaperID: "diaz16", Position: 0, Affiliation: "Universidad de Chile, Santiago, Chile"}}},
		{"Chile, Santiago", []Hit{{PaperID: "diaz16", Position: 0, Affiliation: "Universidad de Chile, Santiago, Chile"}}},
		{"oxford", nil},
		{"  ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := db.Search(tt.query, 10)
			if err != nil {
				t.Fatalf("Search(%q) error = %v", tt.query, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Search(%q) mismatch (-want +got):\n%s", tt.query, diff)
			}
		})
	}
}

func TestDB_SearchLimit(t *testing.T) {
	db, _ := setupTestDB(t)

	hits, err := db.Search("university OR universidad", 1)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 {
		t.Errorf("Search() returned %d hits, want 1", len(hits))
	}
}

func TestPrepareFTSQuery(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"cambridge", "cambridge"},
		{"  mit  ", "mit"},
		{"max-planck", `"max-planck"`},
		{`say "hi"`, `"say ""hi"""`},
		{"king's college", `"king's college"`},
		{"", ""},
	}

	for _, tt := range tests {
		if got := prepareFTSQuery(tt.input); got != tt.want {
			t.Errorf("prepareFTSQuery(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
