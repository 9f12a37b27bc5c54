package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// DefaultSearchLimit is the default limit for search results.
const DefaultSearchLimit = 50

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	closeLog()
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// formatAffiliations renders affiliations one per line, indented, or a
// marker when extraction failed.
func formatAffiliations(affiliations []string, indent string) string {
	if affiliations == nil {
		return indent + "(none)"
	}
	if len(affiliations) == 0 {
		return indent + "(empty)"
	}
	return indent + strings.Join(affiliations, "\n"+indent)
}
