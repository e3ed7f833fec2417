package rag

import (
	"context"
	"errors"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/dream-ai/bp-assistant/internal/db"
)

// DefaultTopK is how many chunks a query retrieves
const DefaultTopK = 3

// QueryEmbedder turns a question into a vector
type QueryEmbedder interface {
	Embed(ctx context.Context, text string) (*pgvector.Vector, error)
}

// Searcher runs nearest-neighbour queries against the chunk table
type Searcher interface {
	SearchSimilar(ctx context.Context, table string, embedding *pgvector.Vector, limit int) ([]*db.ScoredRecord, error)
}

// Retriever handles RAG retrieval using vector similarity search
type Retriever struct {
	embedder QueryEmbedder
	searcher Searcher
	table    string
	topK     int
}

// NewRetriever creates a new RAG retriever over table
func NewRetriever(embedder QueryEmbedder, searcher Searcher, table string, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{
		embedder: embedder,
		searcher: searcher,
		table:    table,
		topK:     topK,
	}
}

// Retrieve finds the chunks nearest to query, closest first
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]*db.ScoredRecord, error) {
	if r.embedder == nil || r.searcher == nil {
		return nil, errors.New("retriever is not configured")
	}

	queryEmbedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}

	records, err := r.searcher.SearchSimilar(ctx, r.table, queryEmbedding, r.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	return records, nil
}
