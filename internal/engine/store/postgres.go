package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anatolykoptev/go_ytsum/internal/engine"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Postgres is a Store backed by a pgx connection pool.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgres creates a pgx pool and runs schema migrations.
func NewPostgres(ctx context.Context, databaseURL string, logger *slog.Logger) (*Postgres, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	p := &Postgres{pool: pool, logger: logger.With(slog.String("component", "store.postgres"))}
	if err := p.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	p.logger.Info("postgres connected", slog.String("addr", config.ConnConfig.Host))
	return p, nil
}

func (p *Postgres) runMigrations(ctx context.Context) error {
	entries, err := schemaFS.ReadDir("schema")
	if err != nil {
		return fmt.Errorf("read schema dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		data, err := schemaFS.ReadFile("schema/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		if _, err := p.pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("execute %s: %w", entry.Name(), err)
		}
		p.logger.Debug("migration applied", slog.String("file", entry.Name()))
	}
	return nil
}

func (p *Postgres) GetTranscript(ctx context.Context, id engine.VideoID) (TranscriptRecord, bool, error) {
	rec := TranscriptRecord{VideoID: id}
	var source string
	err := p.pool.QueryRow(ctx,
		`SELECT source_type, full_text, fetched_at, filename, duration_seconds
		 FROM transcripts WHERE video_id = $1`, string(id),
	).Scan(&source, &rec.FullText, &rec.FetchedAt, &rec.Filename, &rec.DurationSeconds)
	if errors.Is(err, pgx.ErrNoRows) {
		return TranscriptRecord{}, false, nil
	}
	if err != nil {
		return TranscriptRecord{}, false, fmt.Errorf("postgres: get transcript: %w", err)
	}
	rec.SourceType = engine.SourceType(source)
	rec.FetchedAt = rec.FetchedAt.UTC()
	return rec, true, nil
}

func (p *Postgres) InsertTranscript(ctx context.Context, rec TranscriptRecord) error {
	rec, err := prepareTranscript(rec)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO transcripts (video_id, source_type, full_text, fetched_at, filename, duration_seconds)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (video_id) DO NOTHING`,
		string(rec.VideoID), string(rec.SourceType), rec.FullText, rec.FetchedAt, rec.Filename, rec.DurationSeconds)
	if err != nil {
		return fmt.Errorf("postgres: insert transcript: %w", err)
	}
	return nil
}

func (p *Postgres) GetSummary(ctx context.Context, id engine.VideoID, kind engine.Kind) (SummaryRecord, bool, error) {
	rec := SummaryRecord{VideoID: id, Kind: kind}
	err := p.pool.QueryRow(ctx,
		`SELECT text, created_at FROM summaries WHERE video_id = $1 AND kind = $2`, string(id), string(kind),
	).Scan(&rec.Text, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return SummaryRecord{}, false, nil
	}
	if err != nil {
		return SummaryRecord{}, false, fmt.Errorf("postgres: get summary: %w", err)
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, true, nil
}

func (p *Postgres) InsertSummary(ctx context.Context, rec SummaryRecord) error {
	rec, err := prepareSummary(rec)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO summaries (video_id, kind, text, created_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (video_id, kind) DO NOTHING`,
		string(rec.VideoID), string(rec.Kind), rec.Text, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: insert summary: %w", err)
	}
	return nil
}

func (p *Postgres) ListVideos(ctx context.Context, limit int, source engine.SourceType) ([]VideoEntry, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT t.video_id, t.source_type, t.fetched_at, t.filename, t.duration_seconds, s.kind, s.text
		FROM (SELECT video_id, source_type, fetched_at, filename, duration_seconds FROM transcripts
		      WHERE $1 = '' OR source_type = $1
		      ORDER BY fetched_at DESC, video_id LIMIT $2) t
		LEFT JOIN summaries s ON s.video_id = t.video_id
		ORDER BY t.fetched_at DESC, t.video_id`, string(source), NormLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("postgres: list videos: %w", err)
	}
	defer rows.Close()

	var entries []VideoEntry
	for rows.Next() {
		var (
			head       VideoEntry
			id, st     string
			fetchedAt  time.Time
			kind, text *string
		)
		if err := rows.Scan(&id, &st, &fetchedAt, &head.Filename, &head.DurationSeconds, &kind, &text); err != nil {
			return nil, fmt.Errorf("postgres: scan video: %w", err)
		}
		head.VideoID = engine.VideoID(id)
		head.SourceType = engine.SourceType(st)
		head.FetchedAt = fetchedAt.UTC()
		entries = appendJoinedRow(entries, head, deref(kind), deref(text))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list videos: %w", err)
	}
	for i := range entries {
		entries[i].sortKinds()
	}
	return entries, nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
