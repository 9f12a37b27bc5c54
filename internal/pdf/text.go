package pdf

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoPages is returned for a PDF without a readable first page.
var ErrNoPages = errors.New("PDF has no pages")

const (
	// rowTolerance is the fraction of the font size two glyph baselines may
	// differ by and still be on the same line (superscript markers included).
	rowTolerance = 0.4
	// spaceGap is the fraction of the font size a horizontal gap must exceed
	// to be read as a space.
	spaceGap = 0.15
	// minFontSize guards against zero-sized fonts in malformed files.
	minFontSize = 1.0
)

// FirstPageText extracts the text of the first page of a PDF, one text line
// per output line, top to bottom.
func FirstPageText(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	if r.NumPage() < 1 {
		return "", ErrNoPages
	}

	page := r.Page(1)
	if page.V.IsNull() {
		return "", ErrNoPages
	}

	texts, err := pageGlyphs(page)
	if err != nil {
		return "", fmt.Errorf("reading page 1: %w", err)
	}

	return strings.Join(AssembleLines(texts), "\n"), nil
}

// readGlyphs decodes the content stream of a page.
var readGlyphs = func(page pdf.Page) []pdf.Text {
	return page.Content().Text
}

// pageGlyphs returns the positioned glyphs of a page.
// The PDF library panics on some malformed content streams.
func pageGlyphs(page pdf.Page) (texts []pdf.Text, err error) {
	defer func() {
		if r := recover(); r != nil {
			texts = nil
			err = fmt.Errorf("malformed page content: %v", r)
		}
	}()
	return readGlyphs(page), nil
}

type row struct {
	y      float64
	glyphs []pdf.Text
}

// AssembleLines groups positioned glyphs into text lines: glyphs whose
// baselines are close belong to the same line, lines are ordered top to
// bottom and glyphs left to right, and a space is inserted wherever the gap
// between two glyphs is wide enough.
func AssembleLines(texts []pdf.Text) []string {
	glyphs := make([]pdf.Text, 0, len(texts))
	for _, t := range texts {
		if t.S != "" {
			glyphs = append(glyphs, t)
		}
	}

	// Top of the page first (PDF Y grows upwards).
	sort.SliceStable(glyphs, func(i, j int) bool {
		return glyphs[i].Y > glyphs[j].Y
	})

	var rows []*row
	for _, g := range glyphs {
		var current *row
		if n := len(rows); n > 0 {
			last := rows[n-1]
			if math.Abs(last.y-g.Y) <= rowTolerance*fontSize(g) {
				current = last
			}
		}
		if current == nil {
			current = &row{y: g.Y}
			rows = append(rows, current)
		}
		current.glyphs = append(current.glyphs, g)
	}

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		if line := r.text(); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// text joins the glyphs of a row left to right.
func (r *row) text() string {
	sort.SliceStable(r.glyphs, func(i, j int) bool {
		return r.glyphs[i].X < r.glyphs[j].X
	})

	var b strings.Builder
	var prev *pdf.Text
	for i := range r.glyphs {
		g := &r.glyphs[i]
		if prev != nil {
			gap := g.X - (prev.X + prev.W)
			if gap > spaceGap*fontSize(*g) &&
				!strings.HasSuffix(prev.S, " ") && !strings.HasPrefix(g.S, " ") {
				b.WriteByte(' ')
			}
		}
		b.WriteString(g.S)
		prev = g
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func fontSize(t pdf.Text) float64 {
	return math.Max(t.FontSize, minFontSize)
}
