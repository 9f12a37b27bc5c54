package main

import (
	"testing"

	"github.com/matsen/affil/internal/config"
	"github.com/matsen/affil/internal/normalize"
	"github.com/matsen/affil/internal/reference"
)

func TestParseExtractArgs(t *testing.T) {
	withCountries := &config.Config{CountriesFile: "/cfg/countries.csv"}

	tests := []struct {
		name    string
		args    []string
		cfg     *config.Config
		want    extractArgs
		wantErr bool
	}{
		{
			name: "three args",
			args: []string{"meta.json", "pdfs", "out.tsv"},
			want: extractArgs{Metadata: "meta.json", PDFDir: "pdfs", Output: "out.tsv"},
		},
		{
			name: "three args with configured countries",
			args: []string{"meta.json", "pdfs", "out.tsv"},
			cfg:  withCountries,
			want: extractArgs{Metadata: "meta.json", Countries: "/cfg/countries.csv", PDFDir: "pdfs", Output: "out.tsv"},
		},
		{
			name: "four args override config",
			args: []string{"meta.json", "c.csv", "pdfs", "out.tsv"},
			cfg:  withCountries,
			want: extractArgs{Metadata: "meta.json", Countries: "c.csv", PDFDir: "pdfs", Output: "out.tsv"},
		},
		{name: "two args", args: []string{"meta.json", "pdfs"}, wantErr: true},
		{name: "five args", args: []string{"a", "b", "c", "d", "e"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseExtractArgs(tt.args, tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseExtractArgs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseExtractArgs() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFormatAffiliations(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want string
	}{
		{"failed", nil, "  (none)"},
		{"empty", []string{}, "  (empty)"},
		{"lines", []string{"Univ A", "Univ B"}, "  Univ A\n  Univ B"},
	}

	for _, tt := range tests {
		if got := formatAffiliations(tt.in, "  "); got != tt.want {
			t.Errorf("formatAffiliations(%s) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestFindPaper(t *testing.T) {
	papers := []reference.Paper{{ID: "a16"}, {ID: "b16", Title: "B"}}

	if p, ok := findPaper(papers, "b16"); !ok || p.Title != "B" {
		t.Errorf("findPaper(b16) = %+v, %v", p, ok)
	}
	if _, ok := findPaper(papers, "c16"); ok {
		t.Error("findPaper(c16) found a paper")
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "b", "c"); got != "b" {
		t.Errorf("firstNonEmpty() = %q, want b", got)
	}
	if got := firstNonEmpty("", ""); got != "" {
		t.Errorf("firstNonEmpty() = %q, want empty", got)
	}
}

func TestNewCleaner_UsesConfiguredFixes(t *testing.T) {
	orig := cfg
	defer func() { cfg = orig }()

	cfg = nil
	base := newCleaner()
	if got := base.Clean("Jon Smyth"); got != "jon smyth" {
		t.Errorf("Clean() without config = %q", got)
	}

	cfg = &config.Config{NameFixes: []normalize.Replacement{{From: "jon smyth", To: "john smith"}}}
	c := newCleaner()
	if got := c.Clean("Jon Smyth"); got != "john smith" {
		t.Errorf("Clean() with name fix = %q, want john smith", got)
	}
	if got, want := len(c.Fixes()), len(base.Fixes())+1; got != want {
		t.Errorf("len(Fixes()) = %d, want %d", got, want)
	}
}
