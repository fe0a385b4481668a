package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/anatolykoptev/go_ytsum/internal/engine"
)

// timeLayout is fixed-width so TEXT timestamps sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLite is the default Store, a single-file database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at path and its tables.
func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("sqlite: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initSQLiteSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: init schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func initSQLiteSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`PRAGMA busy_timeout = 5000`,
		`CREATE TABLE IF NOT EXISTS transcripts (
			video_id         TEXT PRIMARY KEY,
			source_type      TEXT NOT NULL DEFAULT 'youtube',
			full_text        TEXT NOT NULL,
			fetched_at       TEXT NOT NULL,
			filename         TEXT NOT NULL DEFAULT '',
			duration_seconds INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS transcripts_fetched_at ON transcripts (fetched_at)`,
		`CREATE TABLE IF NOT EXISTS summaries (
			video_id   TEXT NOT NULL,
			kind       TEXT NOT NULL,
			text       TEXT NOT NULL,
			created_at TEXT NOT NULL,
			PRIMARY KEY (video_id, kind)
		)`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	// Databases created before audio support lack the source columns.
	for _, col := range []struct{ name, decl string }{
		{"source_type", "TEXT NOT NULL DEFAULT 'youtube'"},
		{"filename", "TEXT NOT NULL DEFAULT ''"},
		{"duration_seconds", "INTEGER NOT NULL DEFAULT 0"},
	} {
		if err := addColumnIfMissing(ctx, db, "transcripts", col.name, col.decl); err != nil {
			return err
		}
	}
	_, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS transcripts_source ON transcripts (source_type, fetched_at)`)
	return err
}

func addColumnIfMissing(ctx context.Context, db *sql.DB, table, column, decl string) error {
	rows, err := db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()
	_, err = db.ExecContext(ctx, fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`, table, column, decl))
	return err
}

func (s *SQLite) GetTranscript(ctx context.Context, id engine.VideoID) (TranscriptRecord, bool, error) {
	rec := TranscriptRecord{VideoID: id}
	var source, fetched string
	err := s.db.QueryRowContext(ctx,
		`SELECT source_type, full_text, fetched_at, filename, duration_seconds
		 FROM transcripts WHERE video_id = ?`, string(id),
	).Scan(&source, &rec.FullText, &fetched, &rec.Filename, &rec.DurationSeconds)
	if errors.Is(err, sql.ErrNoRows) {
		return TranscriptRecord{}, false, nil
	}
	if err != nil {
		return TranscriptRecord{}, false, fmt.Errorf("sqlite: get transcript: %w", err)
	}
	rec.SourceType = engine.SourceType(source)
	rec.FetchedAt = parseTime(fetched)
	return rec, true, nil
}

func (s *SQLite) InsertTranscript(ctx context.Context, rec TranscriptRecord) error {
	rec, err := prepareTranscript(rec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO transcripts (video_id, source_type, full_text, fetched_at, filename, duration_seconds)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(video_id) DO NOTHING`,
		string(rec.VideoID), string(rec.SourceType), rec.FullText, rec.FetchedAt.Format(timeLayout),
		rec.Filename, rec.DurationSeconds)
	if err != nil {
		return fmt.Errorf("sqlite: insert transcript: %w", err)
	}
	return nil
}

func (s *SQLite) GetSummary(ctx context.Context, id engine.VideoID, kind engine.Kind) (SummaryRecord, bool, error) {
	var text, created string
	err := s.db.QueryRowContext(ctx,
		`SELECT text, created_at FROM summaries WHERE video_id = ? AND kind = ?`, string(id), string(kind),
	).Scan(&text, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return SummaryRecord{}, false, nil
	}
	if err != nil {
		return SummaryRecord{}, false, fmt.Errorf("sqlite: get summary: %w", err)
	}
	return SummaryRecord{VideoID: id, Kind: kind, Text: text, CreatedAt: parseTime(created)}, true, nil
}

func (s *SQLite) InsertSummary(ctx context.Context, rec SummaryRecord) error {
	rec, err := prepareSummary(rec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO summaries (video_id, kind, text, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(video_id, kind) DO NOTHING`,
		string(rec.VideoID), string(rec.Kind), rec.Text, rec.CreatedAt.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("sqlite: insert summary: %w", err)
	}
	return nil
}

func (s *SQLite) ListVideos(ctx context.Context, limit int, source engine.SourceType) ([]VideoEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.video_id, t.source_type, t.fetched_at, t.filename, t.duration_seconds, s.kind, s.text
		FROM (SELECT video_id, source_type, fetched_at, filename, duration_seconds FROM transcripts
		      WHERE ? = '' OR source_type = ?
		      ORDER BY fetched_at DESC, video_id LIMIT ?) t
		LEFT JOIN summaries s ON s.video_id = t.video_id
		ORDER BY t.fetched_at DESC, t.video_id`, string(source), string(source), NormLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("sqlite: list videos: %w", err)
	}
	defer rows.Close()

	var entries []VideoEntry
	for rows.Next() {
		var (
			head          VideoEntry
			id, st, fetch string
			kind, text    sql.NullString
		)
		if err := rows.Scan(&id, &st, &fetch, &head.Filename, &head.DurationSeconds, &kind, &text); err != nil {
			return nil, fmt.Errorf("sqlite: scan video: %w", err)
		}
		head.VideoID = engine.VideoID(id)
		head.SourceType = engine.SourceType(st)
		head.FetchedAt = parseTime(fetch)
		entries = appendJoinedRow(entries, head, kind.String, text.String)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list videos: %w", err)
	}
	for i := range entries {
		entries[i].sortKinds()
	}
	return entries, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

// appendJoinedRow folds one transcript⋈summary row into entries. Rows of the
// same video arrive consecutively.
func appendJoinedRow(entries []VideoEntry, head VideoEntry, kind, text string) []VideoEntry {
	if n := len(entries); n == 0 || entries[n-1].VideoID != head.VideoID {
		entries = append(entries, head)
	}
	if kind != "" {
		entries[len(entries)-1].addKind(engine.Kind(kind), text)
	}
	return entries
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t
}
