// Package normalize turns author names and header lines into a comparable
// lowercase form using hand-maintained replacement tables.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// isolatedLetter matches a single letter surrounded by spaces ("john a smith").
var isolatedLetter = regexp.MustCompile(` ([a-z]) `)

// Cleaner applies the static tables followed by caller-supplied fixes.
// The zero value is not usable; use NewCleaner.
type Cleaner struct {
	fixes []Replacement
}

// NewCleaner returns a Cleaner applying EncodingFixes, NameFixes and then
// extra, in that order.
func NewCleaner(extra ...Replacement) *Cleaner {
	fixes := make([]Replacement, 0, len(EncodingFixes)+len(NameFixes)+len(extra))
	fixes = append(fixes, EncodingFixes...)
	fixes = append(fixes, NameFixes...)
	for _, r := range extra {
		if r.From == "" {
			continue
		}
		fixes = append(fixes, r)
	}
	return &Cleaner{fixes: fixes}
}

// Fixes returns the replacements in application order.
func (c *Cleaner) Fixes() []Replacement {
	return append([]Replacement(nil), c.fixes...)
}

// Clean returns the normalized form of dirty: composed, lowercased, trimmed,
// isolated letters turned into initials, then every fix applied in order.
func (c *Cleaner) Clean(dirty string) string {
	s := norm.NFC.String(dirty)
	s = strings.TrimSpace(strings.ToLower(s))
	s = isolatedLetter.ReplaceAllString(s, " ${1}. ")
	for _, r := range c.fixes {
		s = strings.ReplaceAll(s, r.From, r.To)
	}
	return s
}

// CleanLines cleans each line of a newline-separated block independently.
func (c *Cleaner) CleanLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = c.Clean(l)
	}
	return out
}

var defaultCleaner = NewCleaner()

// Clean normalizes dirty with the static tables only.
func Clean(dirty string) string {
	return defaultCleaner.Clean(dirty)
}
