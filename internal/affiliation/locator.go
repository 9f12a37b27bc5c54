// Package affiliation locates the affiliation block of a paper header by
// aligning its lines against the paper's author list.
package affiliation

import (
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/matsen/affil/internal/normalize"
	"github.com/matsen/affil/internal/reference"
)

var (
	// abstractMarker ends the header: a bare "Abstract" line, or one that
	// runs straight into the abstract text ("Abstract—We present ...").
	abstractMarker = regexp.MustCompile(`^[ \t]*(?:Abstract|ABSTRACT)[ \t]*(?:[—–\-:.].*)?$`)

	emailPrefix = regexp.MustCompile(`(?i)^email`)

	// footnoteMarks are stripped before a line is compared to author names.
	footnoteMarks = regexp.MustCompile(`[0-9*†‡§¶]`)

	// authorSeparator splits a line of several authors; the first part is
	// the candidate author.
	authorSeparator = regexp.MustCompile(`\s+and\s+|\s*&\s*|\s*[,;]\s*`)

	leadingConjunction = regexp.MustCompile(`^(?:and|&)\s+`)

	nonNameChars = regexp.MustCompile(`[^a-zA-Z\-. ']`)

	spaces = regexp.MustCompile(`\s+`)

	// leadingFootnote is a footnote marker in front of an affiliation.
	leadingFootnote = regexp.MustCompile(`^[\s0-9*†‡§¶]+`)

	// inlineFootnote is a numbered affiliation starting mid-line:
	// "Univ A, 2University B" or "univ a, 2 univ b". A lowercase start needs
	// the blank so that "3rd floor" stays whole; postal codes have more digits.
	inlineFootnote = regexp.MustCompile(`[,;]\s*[0-9]{1,2}(?:\s*([A-Z])|\s+([a-z]))`)
)

// scan states
type state int

const (
	searching state = iota
	inAuthorBlock
	done
)

// Locator extracts affiliation lines from first-page text.
type Locator struct {
	cleaner   *normalize.Cleaner
	countries []string
	logger    *zap.Logger
}

// Option configures a Locator.
type Option func(*Locator)

// WithCleaner sets the normalizer used for lines and authors.
func WithCleaner(c *normalize.Cleaner) Option {
	return func(l *Locator) {
		if c != nil {
			l.cleaner = c
		}
	}
}

// WithCountries enables the country guard with already-cleaned names.
func WithCountries(countries []string) Option {
	return func(l *Locator) {
		l.countries = countries
	}
}

// WithLogger sets the logger used for per-line debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Locator) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLocator creates a Locator with the static tables and no country guard.
func NewLocator(opts ...Option) *Locator {
	l := &Locator{
		cleaner: normalize.NewCleaner(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Extract returns the affiliation lines of a first-page text.
//
// The header (text before the abstract) is filtered and normalized, then
// scanned top to bottom: the first line whose leading name is an author
// opens the author block, and the first following line that is not an
// author closes it. Everything from that line on is the affiliation block;
// a header that ends inside the author block is returned from the first
// author line. If no line matches an author, an *AlignmentError is returned.
func (l *Locator) Extract(paperID, text string, authors []reference.Author) ([]string, error) {
	filtered := filterHeader(headerLines(text))
	cleaned := l.cleaner.CleanLines(filtered)
	known := l.authorVariants(authors)

	first, start := -1, -1
	st := searching
	for i, line := range cleaned {
		candidate := leadingAuthor(line)
		isAuthor := candidate != "" && known[candidate]
		l.logger.Debug("candidate author",
			zap.String("paper_id", paperID),
			zap.String("candidate", candidate),
			zap.Bool("matched", isAuthor))

		if st == searching && isAuthor {
			st = inAuthorBlock
			first = i
		} else if st == inAuthorBlock && !isAuthor {
			st = done
			start = i
			break
		}
	}

	switch st {
	case searching:
		return nil, &AlignmentError{
			PaperID:        paperID,
			Authors:        joinAuthors(authors),
			CleanedAuthors: sortedKeys(known),
			FilteredHeader: filtered,
			CleanedHeader:  cleaned,
		}
	case inAuthorBlock:
		// The header ended inside the author block: keep everything from the
		// first author line on, there is no later boundary to cut at.
		start = first
	}

	return l.guardCountries(splitFootnotes(filtered[start:])), nil
}

// headerLines returns the lines of text up to the abstract marker.
func headerLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if abstractMarker.MatchString(line) {
			return lines[:i]
		}
	}
	return lines
}

// filterHeader drops empty lines and lines carrying e-mail addresses.
func filterHeader(lines []string) []string {
	var out []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" ||
			strings.Contains(trimmed, "@") ||
			strings.HasPrefix(trimmed, "{") ||
			emailPrefix.MatchString(trimmed) {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

// leadingAuthor returns the first name-like part of a normalized line.
func leadingAuthor(line string) string {
	s := footnoteMarks.ReplaceAllString(line, "")
	s = leadingConjunction.ReplaceAllString(strings.TrimSpace(s), "")
	s = authorSeparator.Split(s, 2)[0]
	return canonical(s)
}

// canonical keeps only characters that can appear in a romanized name.
func canonical(s string) string {
	s = nonNameChars.ReplaceAllString(s, "")
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}

// authorVariants returns the set of normalized spellings to look for:
// full name, surname first, and initials followed by the surname.
func (l *Locator) authorVariants(authors []reference.Author) map[string]bool {
	known := make(map[string]bool)
	add := func(s string) {
		if c := canonical(l.cleaner.Clean(s)); c != "" {
			known[c] = true
		}
	}

	for _, a := range authors {
		add(a.Joined())

		given := a.Given()
		if len(given) == 0 {
			continue
		}
		add(a.Surname() + " " + strings.Join(given, " "))

		initials := make([]string, 0, len(given))
		for _, g := range given {
			if ini := initial(l.cleaner.Clean(g)); ini != "" {
				initials = append(initials, ini)
			}
		}
		if len(initials) > 0 {
			joined := strings.Join(initials, " ")
			add(joined + " " + a.Surname())
			add(strings.ReplaceAll(joined, ".", "") + " " + a.Surname())
		}
	}
	return known
}

// initial returns "x." for a cleaned given name, or "" if it does not start
// with a letter.
func initial(given string) string {
	for _, r := range given {
		if r >= 'a' && r <= 'z' {
			return string(r) + "."
		}
		return ""
	}
	return ""
}

type segment struct {
	text     string
	numbered bool // starts a footnote-numbered affiliation
}

// splitFootnotes strips footnote markers and splits lines holding several
// numbered affiliations.
func splitFootnotes(lines []string) []segment {
	var out []segment
	for _, line := range lines {
		numbered := leadingFootnote.MatchString(line)
		line = leadingFootnote.ReplaceAllString(line, "")
		line = inlineFootnote.ReplaceAllString(line, "\n${1}${2}")
		for j, part := range strings.Split(line, "\n") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			out = append(out, segment{text: part, numbered: numbered || j > 0})
		}
	}
	return out
}

// guardCountries joins an affiliation split over several lines: a line not
// ending with a country continues on the next one unless that one starts a
// new numbered affiliation. Nothing is joined without a country list, or if
// no line ends with a country at all.
func (l *Locator) guardCountries(segs []segment) []string {
	lines := make([]string, len(segs))
	for i, s := range segs {
		lines[i] = s.text
	}
	if len(l.countries) == 0 || len(segs) < 2 {
		return lines
	}

	endsWithCountry := make([]bool, len(segs))
	anyCountry := false
	for i, s := range segs {
		endsWithCountry[i] = l.endsWithCountry(s.text)
		anyCountry = anyCountry || endsWithCountry[i]
	}
	if !anyCountry {
		return lines
	}

	var out []string
	pending := ""
	for i, s := range segs {
		text := s.text
		if pending != "" {
			if s.numbered {
				out = append(out, pending)
			} else {
				text = strings.TrimRight(pending, ",; ") + ", " + text
			}
			pending = ""
		}
		if !endsWithCountry[i] && i < len(segs)-1 {
			pending = text
			continue
		}
		out = append(out, text)
	}
	if pending != "" {
		out = append(out, pending)
	}
	return out
}

// endsWithCountry reports whether the normalized line ends with a country
// name on a word boundary.
func (l *Locator) endsWithCountry(line string) bool {
	c := canonical(l.cleaner.Clean(line))
	c = strings.TrimRight(c, ". ")
	for _, country := range l.countries {
		if country == "" || !strings.HasSuffix(c, country) {
			continue
		}
		rest := c[:len(c)-len(country)]
		if rest == "" || strings.HasSuffix(rest, " ") {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func joinAuthors(authors []reference.Author) []string {
	out := make([]string, len(authors))
	for i, a := range authors {
		out[i] = a.Joined()
	}
	return out
}
