package affiliation

import (
	"errors"
	"fmt"

	"go.uber.org/zap/zapcore"
)

// ErrNoAlignment is returned when no header line starts with a known author.
var ErrNoAlignment = errors.New("no author alignment")

// AlignmentError carries the diagnostic context of a failed alignment.
type AlignmentError struct {
	PaperID        string
	Authors        []string // as given by metadata
	CleanedAuthors []string // every normalized variant that was tried
	FilteredHeader []string // header lines after e-mail/empty filtering
	CleanedHeader  []string // the same lines, normalized
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("%s for paper %s: authors %q, cleaned authors %q, cleaned header %q",
		ErrNoAlignment, e.PaperID, e.Authors, e.CleanedAuthors, e.CleanedHeader)
}

func (e *AlignmentError) Unwrap() error {
	return ErrNoAlignment
}

// MarshalLogObject lets the diagnostics be logged as structured fields.
func (e *AlignmentError) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("paper_id", e.PaperID)
	for key, list := range map[string][]string{
		"authors":         e.Authors,
		"cleaned_authors": e.CleanedAuthors,
		"filtered_header": e.FilteredHeader,
		"cleaned_header":  e.CleanedHeader,
	} {
		if err := enc.AddArray(key, stringArray(list)); err != nil {
			return err
		}
	}
	return nil
}

type stringArray []string

func (a stringArray) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, s := range a {
		enc.AppendString(s)
	}
	return nil
}
