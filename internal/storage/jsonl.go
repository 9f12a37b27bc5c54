// Package storage persists extraction results as TSV, JSONL and SQLite.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/matsen/affil/internal/reference"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// ReadResultsJSONL reads all results from a JSONL file.
func ReadResultsJSONL(path string) ([]reference.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // Missing file returns empty slice
		}
		return nil, fmt.Errorf("opening results file: %w", err)
	}
	defer f.Close()

	var results []reference.Result
	scanner := bufio.NewScanner(f)

	// Increase buffer size for long lines
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var res reference.Result
		if err := json.Unmarshal(line, &res); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		if res.PaperID == "" {
			return nil, fmt.Errorf("line %d: missing paper_id", lineNum)
		}
		results = append(results, res)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading results file: %w", err)
	}

	return results, nil
}

// WriteResultsJSONL writes all results to a JSONL file, replacing existing content.
func WriteResultsJSONL(path string, results []reference.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating results file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i, res := range results {
		data, err := json.Marshal(res)
		if err != nil {
			return fmt.Errorf("encoding result %d: %w", i, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("writing result %d: %w", i, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing results file: %w", err)
	}
	return f.Close()
}
