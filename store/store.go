package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jsphweid/surprisal/markov"
	"github.com/jsphweid/surprisal/model"
)

// ErrNoRuns is returned by LatestRun when nothing has been recorded
// yet.
var ErrNoRuns = errors.New("no runs recorded")

// Store persists run metadata, transition models and per-file scores
// in SQLite.
type Store struct {
	db        *sql.DB
	closeOnce sync.Once
	closeErr  error
}

// Open opens the database at dbPath, creating it and its parent
// directory if necessary, and runs migrations. The database uses WAL
// mode with a single writer connection.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// modernc.org/sqlite uses _pragma=name(value) syntax
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

// Close checkpoints the WAL and closes the connection. It is safe to
// call Close multiple times.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}

func (s *Store) migrate(ctx context.Context) error {
	currentVersion := 0
	row := s.db.QueryRowContext(ctx, `
		SELECT version FROM schema_meta ORDER BY version DESC LIMIT 1
	`)
	if err := row.Scan(&currentVersion); err != nil {
		if err == sql.ErrNoRows || strings.Contains(err.Error(), "no such table") {
			currentVersion = 0
		} else {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{version: 1, sql: migrationV1},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.ExecContext(ctx, m.sql); err != nil {
			return fmt.Errorf("migration v%d failed: %w", m.version, err)
		}
		_, err := s.db.ExecContext(ctx, `
			INSERT OR REPLACE INTO schema_meta (version, applied_at_unix_ms)
			VALUES (?, ?)
		`, m.version, time.Now().UnixMilli())
		if err != nil {
			return fmt.Errorf("failed to record migration v%d: %w", m.version, err)
		}
	}
	return nil
}

// migrationV1 creates the initial schema.
const migrationV1 = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_meta (
  version INTEGER PRIMARY KEY,
  applied_at_unix_ms INTEGER NOT NULL
);

-- One row per corpus run
CREATE TABLE IF NOT EXISTS runs (
  run_id TEXT PRIMARY KEY,
  root TEXT NOT NULL,
  started_at_unix_ms INTEGER NOT NULL,
  finished_at_unix_ms INTEGER,
  files_found INTEGER NOT NULL DEFAULT 0,
  files_scored INTEGER NOT NULL DEFAULT 0,
  files_skipped INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at_unix_ms DESC);

-- Normalized per-style models, one row per observed transition
CREATE TABLE IF NOT EXISTS transition (
  run_id TEXT NOT NULL REFERENCES runs(run_id),
  style TEXT NOT NULL,
  prev_note INTEGER NOT NULL,
  next_note INTEGER NOT NULL,
  count INTEGER NOT NULL,
  probability REAL NOT NULL,
  PRIMARY KEY (run_id, style, prev_note, next_note)
);

CREATE INDEX IF NOT EXISTS idx_transition_style ON transition(run_id, style);

-- Per-file score summaries
CREATE TABLE IF NOT EXISTS file_score (
  run_id TEXT NOT NULL REFERENCES runs(run_id),
  style TEXT NOT NULL,
  rel_path TEXT NOT NULL,
  transitions INTEGER NOT NULL,
  mean_surprise REAL NOT NULL,
  max_surprise REAL NOT NULL,
  PRIMARY KEY (run_id, rel_path)
);

CREATE INDEX IF NOT EXISTS idx_file_score_style ON file_score(run_id, style);
`

// BeginRun records the start of a run.
func (s *Store) BeginRun(ctx context.Context, runID, root string, filesFound int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, root, started_at_unix_ms, files_found)
		VALUES (?, ?, ?, ?)
	`, runID, root, time.Now().UnixMilli(), filesFound)
	if err != nil {
		return fmt.Errorf("failed to record run start: %w", err)
	}
	return nil
}

// FinishRun closes out a run with its final counters.
func (s *Store) FinishRun(ctx context.Context, runID string, scored, skipped int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET finished_at_unix_ms = ?, files_scored = ?, files_skipped = ?
		WHERE run_id = ?
	`, time.Now().UnixMilli(), scored, skipped, runID)
	if err != nil {
		return fmt.Errorf("failed to record run finish: %w", err)
	}
	return nil
}

// SaveModel stores every transition of one style's model inside a
// single transaction.
func (s *Store) SaveModel(ctx context.Context, runID, styleName string, counts *markov.CountTable, m markov.Model) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transition (run_id, style, prev_note, next_note, count, probability)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare transition insert: %w", err)
	}
	defer stmt.Close()

	for _, prev := range counts.Sources() {
		for next, n := range counts.RowCounts(prev) {
			p, _ := m.Prob(prev, next)
			if _, err := stmt.ExecContext(ctx, runID, styleName, prev, next, n, p); err != nil {
				return fmt.Errorf("failed to insert transition: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit model: %w", err)
	}
	return nil
}

// SaveFileScore stores the score summary for one file.
func (s *Store) SaveFileScore(ctx context.Context, runID string, row model.FileScoreRow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO file_score (run_id, style, rel_path, transitions, mean_surprise, max_surprise)
		VALUES (?, ?, ?, ?, ?, ?)
	`, runID, row.Style, row.RelPath, row.Transitions, row.MeanSurprise, row.MaxSurprise)
	if err != nil {
		return fmt.Errorf("failed to insert file score: %w", err)
	}
	return nil
}

// LatestRun returns the most recently started run.
func (s *Store) LatestRun(ctx context.Context) (model.RunInfo, error) {
	var (
		info       model.RunInfo
		startedMs  int64
		finishedMs int64
	)
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, root, started_at_unix_ms, COALESCE(finished_at_unix_ms, 0),
		       files_found, files_scored, files_skipped
		FROM runs ORDER BY started_at_unix_ms DESC, rowid DESC LIMIT 1
	`)
	err := row.Scan(&info.RunID, &info.Root, &startedMs, &finishedMs,
		&info.FilesFound, &info.FilesScored, &info.FilesSkipped)
	if err == sql.ErrNoRows {
		return model.RunInfo{}, ErrNoRuns
	}
	if err != nil {
		return model.RunInfo{}, fmt.Errorf("failed to read latest run: %w", err)
	}
	info.StartedAt = time.UnixMilli(startedMs)
	if finishedMs != 0 {
		info.FinishedAt = time.UnixMilli(finishedMs)
	}
	return info, nil
}

// Styles lists the styles with a stored model for a run.
func (s *Store) Styles(ctx context.Context, runID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT style FROM transition WHERE run_id = ? ORDER BY style
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list styles: %w", err)
	}
	defer rows.Close()

	var styles []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		styles = append(styles, name)
	}
	return styles, rows.Err()
}

// StyleModel returns every stored transition for one style, ordered by
// source then destination note.
func (s *Store) StyleModel(ctx context.Context, runID, styleName string) ([]model.TransitionRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT style, prev_note, next_note, count, probability
		FROM transition
		WHERE run_id = ? AND style = ?
		ORDER BY prev_note, next_note
	`, runID, styleName)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}
	defer rows.Close()

	var result []model.TransitionRow
	for rows.Next() {
		var tr model.TransitionRow
		if err := rows.Scan(&tr.Style, &tr.PrevNote, &tr.NextNote, &tr.Count, &tr.Probability); err != nil {
			return nil, err
		}
		result = append(result, tr)
	}
	return result, rows.Err()
}

// FileScores returns the per-file summaries for one style, ordered by
// path.
func (s *Store) FileScores(ctx context.Context, runID, styleName string) ([]model.FileScoreRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT style, rel_path, transitions, mean_surprise, max_surprise
		FROM file_score
		WHERE run_id = ? AND style = ?
		ORDER BY rel_path
	`, runID, styleName)
	if err != nil {
		return nil, fmt.Errorf("failed to read file scores: %w", err)
	}
	defer rows.Close()

	var result []model.FileScoreRow
	for rows.Next() {
		var fs model.FileScoreRow
		if err := rows.Scan(&fs.Style, &fs.RelPath, &fs.Transitions, &fs.MeanSurprise, &fs.MaxSurprise); err != nil {
			return nil, err
		}
		result = append(result, fs)
	}
	return result, rows.Err()
}
