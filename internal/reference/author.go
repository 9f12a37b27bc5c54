package reference

import "strings"

// Author is a paper author as a list of name tokens, in metadata order.
// The last token is the surname; the preceding ones are given names.
type Author []string

// Joined returns the tokens separated by single spaces.
func (a Author) Joined() string {
	return strings.Join(a.tokens(), " ")
}

// Surname returns the last token, or "" for an empty author.
func (a Author) Surname() string {
	t := a.tokens()
	if len(t) == 0 {
		return ""
	}
	return t[len(t)-1]
}

// Given returns every token except the surname.
func (a Author) Given() []string {
	t := a.tokens()
	if len(t) < 2 {
		return nil
	}
	return t[:len(t)-1]
}

// tokens returns the non-blank tokens, trimmed.
// Metadata occasionally carries tokens with embedded spaces ("Jean Luc"),
// which are split so that each name part is its own token.
func (a Author) tokens() []string {
	var out []string
	for _, tok := range a {
		out = append(out, strings.Fields(tok)...)
	}
	return out
}
