package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
)

// EnsureTable creates the pgvector extension and the chunk table if absent
func (db *DB) EnsureTable(ctx context.Context, table string, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid embedding dimension %d", dimension)
	}

	if _, err := db.pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	_, err := db.pool.Exec(ctx, fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (
			id uuid PRIMARY KEY,
			embedding vector(%d),
			text text NOT NULL,
			metadata jsonb NOT NULL DEFAULT '{}'::jsonb
		)`,
		pgx.Identifier{table}.Sanitize(), dimension,
	))
	if err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}
	return nil
}

// InsertRecordsBatch inserts records in one round trip.
// Each row stands on its own; there is no all-or-nothing guarantee across rows.
func (db *DB) InsertRecordsBatch(ctx context.Context, table string, records []*Record) error {
	if len(records) == 0 {
		return nil
	}

	query := fmt.Sprintf(
		`INSERT INTO %s (id, embedding, text, metadata) VALUES ($1, $2, $3, $4)`,
		pgx.Identifier{table}.Sanitize(),
	)

	batch := &pgx.Batch{}
	for _, rec := range records {
		metadata := rec.Metadata
		if metadata == nil {
			metadata = map[string]any{}
		}
		batch.Queue(query, rec.ID, rec.Embedding, rec.Text, metadata)
	}
	br := db.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < len(records); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert record %d: %w", i, err)
		}
	}
	return nil
}

// SearchSimilar returns the rows nearest to embedding by cosine distance
func (db *DB) SearchSimilar(ctx context.Context, table string, embedding *pgvector.Vector, limit int) ([]*ScoredRecord, error) {
	rows, err := db.pool.Query(ctx, fmt.Sprintf(
		`SELECT id, text, metadata, embedding <=> $1 AS distance
		 FROM %s
		 WHERE embedding IS NOT NULL
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		pgx.Identifier{table}.Sanitize(),
	), embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", table, err)
	}
	defer rows.Close()

	var records []*ScoredRecord
	for rows.Next() {
		var rec ScoredRecord
		if err := rows.Scan(&rec.ID, &rec.Text, &rec.Metadata, &rec.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// CountRecords returns the number of rows in table
func (db *DB) CountRecords(ctx context.Context, table string) (int, error) {
	var n int
	err := db.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT count(*) FROM %s`, pgx.Identifier{table}.Sanitize()),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}
