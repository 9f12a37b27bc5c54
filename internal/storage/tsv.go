package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/matsen/affil/internal/reference"
)

// TableHeader is the header row of the output table.
var TableHeader = []string{"paper_id", "affiliations"}

// ErrBadHeader is returned when a table does not start with TableHeader.
var ErrBadHeader = errors.New("table header must be paper_id, affiliations")

func newTableWriter(w io.Writer) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	return cw
}

func newTableReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = len(TableHeader)
	cr.LazyQuotes = true
	return cr
}

// WriteTable writes one row per result. The affiliations cell holds a JSON
// array; failed results get an empty cell.
func WriteTable(w io.Writer, results []reference.Result) error {
	cw := newTableWriter(w)
	if err := cw.Write(TableHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, res := range results {
		cell := ""
		if res.Affiliations != nil {
			data, err := json.Marshal(res.Affiliations)
			if err != nil {
				return fmt.Errorf("encoding affiliations for %s: %w", res.PaperID, err)
			}
			cell = string(data)
		}
		if err := cw.Write([]string{res.PaperID, cell}); err != nil {
			return fmt.Errorf("writing row %s: %w", res.PaperID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteTableFile writes the table to path, replacing existing content.
func WriteTableFile(path string, results []reference.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating table: %w", err)
	}
	defer f.Close()

	if err := WriteTable(f, results); err != nil {
		return err
	}
	return f.Close()
}

// ReadTable parses a table written by WriteTable. Empty cells come back as
// results with nil affiliations.
func ReadTable(r io.Reader) ([]reference.Result, error) {
	cr := newTableReader(r)

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, ErrBadHeader
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if header[0] != TableHeader[0] || header[1] != TableHeader[1] {
		return nil, ErrBadHeader
	}

	var results []reference.Result
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}

		res := reference.Result{PaperID: record[0]}
		if record[1] != "" {
			if err := json.Unmarshal([]byte(record[1]), &res.Affiliations); err != nil {
				return nil, fmt.Errorf("parsing affiliations for %s: %w", record[0], err)
			}
			if res.Affiliations == nil {
				res.Affiliations = []string{}
			}
		}
		results = append(results, res)
	}

	return results, nil
}

// ReadTableFile reads the table at path.
func ReadTableFile(path string) ([]reference.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening table: %w", err)
	}
	defer f.Close()
	return ReadTable(f)
}
