package db

import (
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Record is one stored chunk row: id, embedding, text and metadata columns
type Record struct {
	ID        uuid.UUID
	Embedding *pgvector.Vector
	Text      string
	Metadata  map[string]any
}

// ScoredRecord is a search hit with its cosine distance to the query
type ScoredRecord struct {
	Record
	Distance float64
}
