// Package reference defines the core domain types for conference papers.
package reference

// Paper represents one paper of a conference archive.
type Paper struct {
	ID      string   `json:"id"` // Archive identifier, also the PDF base name
	Title   string   `json:"title,omitempty"`
	Authors []Author `json:"authors"`

	// PDFPath is resolved against the PDF directory, not read from metadata.
	PDFPath string `json:"-"`

	// Invalid is the decoding error of a metadata entry that could not be
	// read. Such papers are reported as failures, never dropped.
	Invalid error `json:"-"`
}

// AuthorNames returns the joined name of every author.
func (p Paper) AuthorNames() []string {
	names := make([]string, len(p.Authors))
	for i, a := range p.Authors {
		names[i] = a.Joined()
	}
	return names
}

// Result is the extraction outcome for one paper. Affiliations is nil when
// extraction failed; Step and Error then say where and why.
type Result struct {
	PaperID      string   `json:"paper_id"`
	Affiliations []string `json:"affiliations"`
	Step         string   `json:"error_step,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// OK reports whether affiliations were extracted.
func (r Result) OK() bool {
	return r.Affiliations != nil
}
