// Package metadata loads conference-archive metadata (paper id → paper info).
package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/matsen/affil/internal/reference"
)

// FlexibleAuthor can unmarshal an author given as a token list, a single
// string, or an object with given/family name fields.
type FlexibleAuthor reference.Author

func (f *FlexibleAuthor) UnmarshalJSON(data []byte) error {
	// Handle null
	if string(data) == "null" {
		*f = nil
		return nil
	}

	// Token list first, the archive's own format
	var tokens []string
	if err := json.Unmarshal(data, &tokens); err == nil {
		*f = FlexibleAuthor(tokens)
		return nil
	}

	// Plain "Given Family" string
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleAuthor(strings.Fields(s))
		return nil
	}

	// Object with name parts
	var obj struct {
		First  string `json:"first"`
		Given  string `json:"given"`
		Last   string `json:"last"`
		Family string `json:"family"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		given := obj.First
		if given == "" {
			given = obj.Given
		}
		family := obj.Last
		if family == "" {
			family = obj.Family
		}
		*f = FlexibleAuthor(strings.Fields(given + " " + family))
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into FlexibleAuthor", string(data))
}

// PaperInfo is one paper entry of the metadata file.
type PaperInfo struct {
	Title   string           `json:"title"`
	Authors []FlexibleAuthor `json:"authors"`
}

// Parse parses a metadata document and returns the papers sorted by id.
//
// The archive format wraps the papers as {"papers": {id: info}}; a bare
// {id: info} map is accepted as well. An entry that cannot be decoded is
// returned as a paper with Invalid set, and its error is also collected.
func Parse(data []byte) ([]reference.Paper, []error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, []error{fmt.Errorf("parsing metadata JSON: %w", err)}
	}

	entries := top
	if raw, ok := top["papers"]; ok {
		entries = nil
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, []error{fmt.Errorf("parsing papers: %w", err)}
		}
	}

	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var papers []reference.Paper
	var errs []error

	for _, id := range ids {
		var info PaperInfo
		if err := json.Unmarshal(entries[id], &info); err != nil {
			err = fmt.Errorf("paper %s: %w", id, err)
			errs = append(errs, err)
			papers = append(papers, reference.Paper{ID: id, Invalid: err})
			continue
		}
		papers = append(papers, infoToPaper(id, info))
	}

	return papers, errs
}

// Load reads and parses the metadata file at path.
func Load(path string) ([]reference.Paper, []error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, []error{fmt.Errorf("reading metadata: %w", err)}
	}
	return Parse(data)
}

// ResolvePDFs sets PDFPath on every paper to <dir>/<id>.pdf.
// Existence is not checked here.
func ResolvePDFs(papers []reference.Paper, dir string) {
	for i := range papers {
		papers[i].PDFPath = PDFPath(dir, papers[i].ID)
	}
}

// PDFPath returns the PDF location of a paper id inside dir.
func PDFPath(dir, id string) string {
	return filepath.Join(dir, id+".pdf")
}

// infoToPaper converts a metadata entry to our Paper type.
func infoToPaper(id string, info PaperInfo) reference.Paper {
	authors := make([]reference.Author, 0, len(info.Authors))
	for _, a := range info.Authors {
		if len(a) == 0 {
			continue
		}
		authors = append(authors, reference.Author(a))
	}
	return reference.Paper{
		ID:      id,
		Title:   info.Title,
		Authors: authors,
	}
}
