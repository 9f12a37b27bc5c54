package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/matsen/affil/internal/reference"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// Hit is one affiliation line matched by a search.
type Hit struct {
	PaperID     string `json:"paper_id"`
	Position    int    `json:"position"`
	Affiliation string `json:"affiliation"`
}

// Stats counts the rows of the index.
type Stats struct {
	Papers       int `json:"papers"`
	Failed       int `json:"failed"`
	Affiliations int `json:"affiliations"`
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS results (
			paper_id TEXT PRIMARY KEY,
			affiliations_json TEXT,
			error_step TEXT,
			error TEXT
		);

		-- One row per affiliation line (standalone, not external content)
		CREATE VIRTUAL TABLE IF NOT EXISTS affiliations_fts USING fts5(
			paper_id UNINDEXED,
			position UNINDEXED,
			affiliation
		);
	`

	_, err := db.Exec(schema)
	return err
}

// RebuildFromJSONL clears the database and rebuilds it from a results JSONL file.
func (d *DB) RebuildFromJSONL(jsonlPath string) (int, error) {
	results, err := ReadResultsJSONL(jsonlPath)
	if err != nil {
		return 0, fmt.Errorf("reading JSONL: %w", err)
	}
	return d.RebuildFromResults(results)
}

// RebuildFromResults clears the database and loads results in one transaction.
// A paper listed more than once keeps its last result.
func (d *DB) RebuildFromResults(results []reference.Result) (int, error) {
	results = dedupeResults(results)

	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM results"); err != nil {
		return 0, fmt.Errorf("clearing results table: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM affiliations_fts"); err != nil {
		return 0, fmt.Errorf("clearing affiliations_fts table: %w", err)
	}

	resultsStmt, err := tx.Prepare(`
		INSERT INTO results (paper_id, affiliations_json, error_step, error)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing results insert: %w", err)
	}
	defer resultsStmt.Close()

	ftsStmt, err := tx.Prepare(`
		INSERT INTO affiliations_fts (paper_id, position, affiliation)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for _, res := range results {
		var affJSON []byte
		if res.Affiliations != nil {
			affJSON, err = json.Marshal(res.Affiliations)
			if err != nil {
				return 0, fmt.Errorf("marshaling affiliations for %s: %w", res.PaperID, err)
			}
		}

		_, err = resultsStmt.Exec(res.PaperID, nullableString(affJSON),
			nullableStringValue(res.Step), nullableStringValue(res.Error))
		if err != nil {
			return 0, fmt.Errorf("inserting result %s: %w", res.PaperID, err)
		}

		for i, aff := range res.Affiliations {
			if _, err := ftsStmt.Exec(res.PaperID, i, aff); err != nil {
				return 0, fmt.Errorf("inserting fts for %s: %w", res.PaperID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return len(results), nil
}

// dedupeResults keeps the last result per paper ID, in first-seen order.
func dedupeResults(results []reference.Result) []reference.Result {
	index := make(map[string]int, len(results))
	out := make([]reference.Result, 0, len(results))
	for _, res := range results {
		if i, ok := index[res.PaperID]; ok {
			out[i] = res
			continue
		}
		index[res.PaperID] = len(out)
		out = append(out, res)
	}
	return out
}

// GetByID retrieves the result for one paper. It returns nil if the paper
// is not indexed.
func (d *DB) GetByID(id string) (*reference.Result, error) {
	row := d.db.QueryRow(`
		SELECT paper_id, affiliations_json, error_step, error
		FROM results WHERE paper_id = ?`, id)

	var res reference.Result
	var affJSON, step, msg sql.NullString
	if err := row.Scan(&res.PaperID, &affJSON, &step, &msg); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning result: %w", err)
	}
	if affJSON.Valid {
		if err := json.Unmarshal([]byte(affJSON.String), &res.Affiliations); err != nil {
			return nil, fmt.Errorf("parsing affiliations for %s: %w", id, err)
		}
		if res.Affiliations == nil {
			res.Affiliations = []string{}
		}
	}
	res.Step = step.String
	res.Error = msg.String
	return &res, nil
}

// Search performs a full-text search over affiliation lines, best match first.
func (d *DB) Search(query string, limit int) ([]Hit, error) {
	ftsQuery := prepareFTSQuery(query)
	if ftsQuery == "" {
		return nil, nil
	}

	rows, err := d.db.Query(`
		SELECT paper_id, position, affiliation
		FROM affiliations_fts
		WHERE affiliations_fts MATCH ?
		ORDER BY rank, paper_id, position
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.PaperID, &h.Position, &h.Affiliation); err != nil {
			return nil, fmt.Errorf("scanning hit: %w", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// Count returns the total number of indexed papers.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM results").Scan(&count)
	return count, err
}

// Stats returns paper, failure and affiliation counts.
func (d *DB) Stats() (Stats, error) {
	var s Stats
	err := d.db.QueryRow(`
		SELECT COUNT(*), COUNT(*) - COUNT(affiliations_json) FROM results`).Scan(&s.Papers, &s.Failed)
	if err != nil {
		return s, fmt.Errorf("counting results: %w", err)
	}
	if err := d.db.QueryRow("SELECT COUNT(*) FROM affiliations_fts").Scan(&s.Affiliations); err != nil {
		return s, fmt.Errorf("counting affiliations: %w", err)
	}
	return s, nil
}

func nullableString(b []byte) sql.NullString {
	if len(b) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// prepareFTSQuery escapes special characters for FTS5 queries.
func prepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// FTS5 uses double quotes for phrase matching
	if strings.ContainsAny(query, "\"*+-:(){}[]^~.,'") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}
