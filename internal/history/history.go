// Package history keeps a small SQLite log of past batch runs so a rerun of
// the same vocabulary file can skip rows that already produced an artifact.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Alex-1367/TwoVoicesDubbing/internal/row"
)

// Store wraps the run-history database
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database at path
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return s, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id integer PRIMARY KEY AUTOINCREMENT,
			started_at text NOT NULL,
			source_file text NOT NULL,
			total integer NOT NULL,
			successful integer NOT NULL,
			failed integer NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS rows (
			run_id integer NOT NULL REFERENCES runs(id),
			idx integer NOT NULL,
			source text NOT NULL,
			target text NOT NULL,
			success integer NOT NULL,
			output_file text,
			error text
		)`,
		`CREATE INDEX IF NOT EXISTS rows_run_idx ON rows(run_id, idx)`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// RecordRun stores one finished batch run with all its row outcomes
func (s *Store) RecordRun(sourceFile string, results []row.Result) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin history transaction: %w", err)
	}
	defer tx.Rollback()

	successful := 0
	for _, r := range results {
		if r.Success {
			successful++
		}
	}

	res, err := tx.Exec(
		`INSERT INTO runs (started_at, source_file, total, successful, failed) VALUES (?, ?, ?, ?, ?)`,
		time.Now().Format(time.RFC3339), sourceFile, len(results), successful, len(results)-successful,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get run id: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO rows (run_id, idx, source, target, success, output_file, error) VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare row insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		success := 0
		if r.Success {
			success = 1
		}
		if _, err := stmt.Exec(runID, r.Index, r.Source, r.Target, success, r.OutputPath, r.ErrMsg); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", r.Index, err)
		}
	}

	return tx.Commit()
}

// SucceededRows returns, for the given source file, every row index that
// succeeded in any previous run mapped to its recorded artifact path. Later
// runs win when an index appears more than once.
func (s *Store) SucceededRows(sourceFile string) (map[int]string, error) {
	rows, err := s.db.Query(
		`SELECT r.idx, r.output_file
		 FROM rows r JOIN runs ru ON r.run_id = ru.id
		 WHERE ru.source_file = ? AND r.success = 1
		 ORDER BY r.run_id ASC`,
		sourceFile,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	succeeded := make(map[int]string)
	for rows.Next() {
		var idx int
		var outputFile string
		if err := rows.Scan(&idx, &outputFile); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		succeeded[idx] = outputFile
	}

	return succeeded, rows.Err()
}
