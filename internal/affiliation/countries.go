package affiliation

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matsen/affil/internal/normalize"
)

// countryColumns are the header names recognized as the country-name column.
var countryColumns = []string{"name", "country", "country_name"}

// LoadCountries reads a CSV of country names and returns them cleaned with
// c (the default tables if nil), deduplicated, in file order.
func LoadCountries(path string, c *normalize.Cleaner) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening countries file: %w", err)
	}
	defer f.Close()

	return ReadCountries(f, c)
}

// ReadCountries parses country names from CSV data. If the first row names a
// country column it is used, otherwise the first column of every row.
func ReadCountries(r io.Reader, c *normalize.Cleaner) ([]string, error) {
	if c == nil {
		c = normalize.NewCleaner()
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	col := 0
	first := true
	seen := make(map[string]bool)
	var countries []string

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing countries CSV: %w", err)
		}

		if first {
			first = false
			if idx := headerColumn(record); idx >= 0 {
				col = idx
				continue
			}
		}
		if col >= len(record) {
			continue
		}

		name := canonical(c.Clean(record[col]))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		countries = append(countries, name)
	}

	return countries, nil
}

// headerColumn returns the index of a known country column, or -1.
func headerColumn(record []string) int {
	for i, field := range record {
		field = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(field, "\ufeff")))
		for _, name := range countryColumns {
			if field == name {
				return i
			}
		}
	}
	return -1
}
