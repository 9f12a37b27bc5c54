package pdf

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ledongthuc/pdf"
)

const glyphWidth = 5.0

// word lays out s left to right starting at x, one glyph per rune, with a
// glyph-wide gap for every space.
func word(s string, x, y, size float64) []pdf.Text {
	var out []pdf.Text
	for _, r := range s {
		if r != ' ' {
			out = append(out, pdf.Text{S: string(r), X: x, Y: y, W: glyphWidth, FontSize: size})
		}
		x += glyphWidth
	}
	return out
}

func concat(parts ...[]pdf.Text) []pdf.Text {
	var out []pdf.Text
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestAssembleLines(t *testing.T) {
	tests := []struct {
		name  string
		texts []pdf.Text
		want  []string
	}{
		{
			name: "top to bottom",
			texts: concat(
				word("Some University", 50, 650, 10),
				word("John Smith", 50, 700, 10),
			),
			want: []string{"John Smith", "Some University"},
		},
		{
			name: "glyphs out of order on a line",
			texts: concat(
				word("Smith", 80, 700, 10),
				word("John", 50, 700, 10),
			),
			want: []string{"John Smith"},
		},
		{
			name: "raised footnote marker joins its line",
			texts: concat(
				word("John Smith", 50, 700, 10),
				word("1", 100, 703, 7),
				word("Some University", 50, 680, 10),
			),
			want: []string{"John Smith1", "Some University"},
		},
		{
			name: "kerned glyphs stay together",
			texts: []pdf.Text{
				{S: "A", X: 50, Y: 700, W: 5, FontSize: 10},
				{S: "V", X: 55.5, Y: 700, W: 5, FontSize: 10},
			},
			want: []string{"AV"},
		},
		{
			name: "empty glyphs ignored",
			texts: []pdf.Text{
				{S: "", X: 10, Y: 900, FontSize: 10},
				{S: "X", X: 10, Y: 700, W: 5, FontSize: 10},
			},
			want: []string{"X"},
		},
		{
			name: "zero font size",
			texts: []pdf.Text{
				{S: "a", X: 10, Y: 700, W: 0},
				{S: "b", X: 20, Y: 700, W: 0},
			},
			want: []string{"a b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AssembleLines(tt.texts)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("AssembleLines() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAssembleLines_Empty(t *testing.T) {
	if got := AssembleLines(nil); len(got) != 0 {
		t.Errorf("AssembleLines(nil) = %v, want empty", got)
	}
}

func TestFirstPageText_NotAPDF(t *testing.T) {
	if _, err := FirstPageText("/nonexistent/paper.pdf"); err == nil {
		t.Error("FirstPageText() expected error for missing file")
	}
}

func TestFirstPageText(t *testing.T) {
	got, err := FirstPageText("testdata/header.pdf")
	if err != nil {
		t.Fatalf("FirstPageText() error = %v", err)
	}
	want := "A Title\nJohn Smith1\nSome University"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FirstPageText() mismatch (-want +got):\n%s", diff)
	}
}

func TestFirstPageText_NoPages(t *testing.T) {
	_, err := FirstPageText("testdata/nopages.pdf")
	if !errors.Is(err, ErrNoPages) {
		t.Errorf("FirstPageText() error = %v, want ErrNoPages", err)
	}
}

func TestFirstPageText_MalformedContent(t *testing.T) {
	orig := readGlyphs
	defer func() { readGlyphs = orig }()
	readGlyphs = func(pdf.Page) []pdf.Text {
		panic("bad Td")
	}

	got, err := FirstPageText("testdata/header.pdf")
	if err == nil {
		t.Fatalf("FirstPageText() = %q, want error", got)
	}
	if !strings.Contains(err.Error(), "malformed page content: bad Td") {
		t.Errorf("FirstPageText() error = %q, want recovered panic", err)
	}
}
