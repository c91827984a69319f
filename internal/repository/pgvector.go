package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"homefinder/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// PgVectorStore keeps listing and past-query vectors in PostgreSQL with the
// pgvector extension and answers cosine nearest-neighbor lookups.
type PgVectorStore struct {
	db         *sqlx.DB
	dimensions int
}

// NewPgVectorStore connects to PostgreSQL and ensures the schema exists
func NewPgVectorStore(dsn string, maxConn, maxIdleConn, dimensions int) (*PgVectorStore, error) {
	// Disable prepared statement caching to avoid "unnamed prepared statement does not exist" errors
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		if !strings.Contains(dsn, "?") {
			dsn += "?prefer_simple_protocol=true"
		} else {
			dsn += "&prefer_simple_protocol=true"
		}
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PgVectorStore{db: db, dimensions: dimensions}
	if err := store.ensureSchema(); err != nil {
		return nil, err
	}

	return store, nil
}

// Close closes the database connection
func (s *PgVectorStore) Close() error {
	return s.db.Close()
}

func (s *PgVectorStore) ensureSchema() error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS listing_points (
			point_id   UUID PRIMARY KEY,
			listing_id TEXT NOT NULL,
			payload    JSONB NOT NULL,
			embedding  vector(%d) NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, s.dimensions),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS query_points (
			point_id     UUID PRIMARY KEY,
			query        TEXT NOT NULL,
			result_count INT NOT NULL,
			embedding    vector(%d) NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, s.dimensions),
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

// UpsertListing writes a listing point. The point id is derived
// deterministically from the listing id by the caller, so repeated upserts
// of the same listing replace the existing row.
func (s *PgVectorStore) UpsertListing(ctx context.Context, pointID string, listing model.Listing, embedding []float32) error {
	payload, err := json.Marshal(listing)
	if err != nil {
		return fmt.Errorf("failed to marshal listing payload: %w", err)
	}

	query := `
		INSERT INTO listing_points (point_id, listing_id, payload, embedding, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (point_id) DO UPDATE
		SET payload = EXCLUDED.payload, embedding = EXCLUDED.embedding, updated_at = NOW()
	`
	_, err = s.db.ExecContext(ctx, query, pointID, listing.ID, payload, pgvector.NewVector(embedding))
	if err != nil {
		return fmt.Errorf("failed to upsert listing %s: %w", listing.ID, err)
	}
	return nil
}

// NearestListings returns up to limit listings ordered by cosine similarity
// to the query embedding, with scores in [0,1].
func (s *PgVectorStore) NearestListings(ctx context.Context, embedding []float32, limit int) ([]model.ScoredListing, error) {
	query := `
		SELECT payload, 1 - (embedding <=> $1) AS score
		FROM listing_points
		ORDER BY embedding <=> $1
		LIMIT $2
	`

	rows := []struct {
		Payload []byte  `db:"payload"`
		Score   float64 `db:"score"`
	}{}
	if err := s.db.SelectContext(ctx, &rows, query, pgvector.NewVector(embedding), limit); err != nil {
		return nil, fmt.Errorf("failed to fetch nearest listings: %w", err)
	}

	scored := make([]model.ScoredListing, 0, len(rows))
	for _, row := range rows {
		var listing model.Listing
		if err := json.Unmarshal(row.Payload, &listing); err != nil {
			return nil, fmt.Errorf("failed to unmarshal listing payload: %w", err)
		}
		scored = append(scored, model.ScoredListing{Listing: listing, Score: row.Score})
	}

	return scored, nil
}

// UpsertQuery stores a successful query vector for later retrieval
func (s *PgVectorStore) UpsertQuery(ctx context.Context, pointID, queryText string, resultCount int, embedding []float32) error {
	query := `
		INSERT INTO query_points (point_id, query, result_count, embedding)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (point_id) DO UPDATE
		SET result_count = EXCLUDED.result_count, created_at = NOW()
	`
	_, err := s.db.ExecContext(ctx, query, pointID, queryText, resultCount, pgvector.NewVector(embedding))
	if err != nil {
		return fmt.Errorf("failed to upsert query: %w", err)
	}
	return nil
}

// NearestQueries returns the text of past queries whose similarity to the
// given embedding is at least minScore, most similar first.
func (s *PgVectorStore) NearestQueries(ctx context.Context, embedding []float32, limit int, minScore float64) ([]string, error) {
	query := `
		SELECT query
		FROM query_points
		WHERE 1 - (embedding <=> $1) >= $2
		ORDER BY embedding <=> $1
		LIMIT $3
	`

	var queries []string
	if err := s.db.SelectContext(ctx, &queries, query, pgvector.NewVector(embedding), minScore, limit); err != nil {
		return nil, fmt.Errorf("failed to fetch nearest queries: %w", err)
	}
	return queries, nil
}
