package vector

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/model"
)

const createSegmentsTableSQL = `
CREATE EXTENSION IF NOT EXISTS vector;
CREATE TABLE IF NOT EXISTS video_segments (
	video_id       TEXT NOT NULL,
	segment_id     TEXT NOT NULL,
	embedding_kind TEXT NOT NULL,
	start_sec      DOUBLE PRECISION NOT NULL,
	end_sec        DOUBLE PRECISION NOT NULL,
	embedding      vector(1024) NOT NULL,
	metadata       JSONB,
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (video_id, segment_id, embedding_kind)
)`

// PgVectorSink stores segments in PostgreSQL with the pgvector extension.
// Query scores are cosine distances from the <=> operator: lower is a closer
// match, the opposite direction from the Qdrant sink.
type PgVectorSink struct {
	db *sql.DB
}

// NewPgVectorSink wraps an open database handle.
func NewPgVectorSink(db *sql.DB) *PgVectorSink {
	return &PgVectorSink{db: db}
}

// OpenPostgres opens and pings a PostgreSQL connection.
func OpenPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return db, nil
}

// Name implements Sink.
func (s *PgVectorSink) Name() string { return "pgvector" }

// ScoreDirection implements Sink.
func (s *PgVectorSink) ScoreDirection() model.ScoreDirection { return model.ScoreDistance }

// EnsureSchema creates the extension and table if missing.
func (s *PgVectorSink) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createSegmentsTableSQL); err != nil {
		return fmt.Errorf("failed to create video_segments schema: %w", err)
	}
	return nil
}

// Write upserts the batch. The primary key on (video_id, segment_id,
// embedding_kind) makes repeated writes overwrite instead of duplicate.
func (s *PgVectorSink) Write(ctx context.Context, segments []model.Segment) (int, error) {
	if len(segments) == 0 {
		return 0, nil
	}

	stmt, err := s.db.PrepareContext(ctx, `
		INSERT INTO video_segments (video_id, segment_id, embedding_kind, start_sec, end_sec, embedding, metadata, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (video_id, segment_id, embedding_kind) DO UPDATE SET
			start_sec = excluded.start_sec,
			end_sec = excluded.end_sec,
			embedding = excluded.embedding,
			metadata = excluded.metadata,
			updated_at = now()`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare segment upsert: %w", err)
	}
	defer stmt.Close()

	written := 0
	for _, seg := range segments {
		meta, err := json.Marshal(seg.Metadata)
		if err != nil {
			return written, fmt.Errorf("failed to encode metadata for %s: %w", seg.Key(), err)
		}
		_, err = stmt.ExecContext(ctx,
			seg.VideoID, seg.SegmentID, string(seg.EmbeddingKind),
			seg.StartSec, seg.EndSec, pgvector.NewVector(seg.Vector), string(meta))
		if err != nil {
			return written, fmt.Errorf("failed to upsert segment %s: %w", seg.Key(), err)
		}
		written++
	}
	return written, nil
}

// Query runs nearest-neighbor search ordered by cosine distance.
func (s *PgVectorSink) Query(ctx context.Context, vec []float32, limit int, filter map[string]string) ([]model.SearchHit, error) {
	query := `
		SELECT video_id, segment_id, embedding_kind, start_sec, end_sec, metadata, embedding <=> $1 AS distance
		FROM video_segments`
	args := []interface{}{pgvector.NewVector(vec)}

	if v, ok := filter["videoId"]; ok {
		args = append(args, v)
		query += fmt.Sprintf(" WHERE video_id = $%d", len(args))
	}

	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY embedding <=> $1 LIMIT $%d", len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgvector search failed: %w", err)
	}
	defer rows.Close()

	var hits []model.SearchHit
	for rows.Next() {
		var (
			hit  model.SearchHit
			kind string
			meta sql.NullString
		)
		if err := rows.Scan(&hit.VideoID, &hit.SegmentID, &kind, &hit.StartSec, &hit.EndSec, &meta, &hit.Score); err != nil {
			return nil, fmt.Errorf("failed to scan search hit: %w", err)
		}
		hit.EmbeddingKind = model.EmbeddingKind(kind)
		hit.ScoreDirection = model.ScoreDistance
		if meta.Valid && meta.String != "" {
			if err := json.Unmarshal([]byte(meta.String), &hit.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode hit metadata: %w", err)
			}
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgvector search iteration failed: %w", err)
	}
	return hits, nil
}

// Flush deletes every stored segment, keeping the schema in place.
func (s *PgVectorSink) Flush(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM video_segments`); err != nil {
		return fmt.Errorf("failed to flush video_segments: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *PgVectorSink) Close() error {
	return s.db.Close()
}
