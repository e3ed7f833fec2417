package embeddings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pgvector/pgvector-go"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrEmptyText is returned when asked to embed blank text
var ErrEmptyText = errors.New("text cannot be empty")

// TextEmbedder generates text embeddings through an OpenAI-compatible endpoint
type TextEmbedder struct {
	embedder embeddings.Embedder
	logger   *slog.Logger
}

// NewTextEmbedder creates a new text embedder
func NewTextEmbedder(baseURL, apiKey, model string) (*TextEmbedder, error) {
	if model == "" {
		model = "text-embedding-004"
	}

	client, err := openai.New(
		openai.WithBaseURL(baseURL),
		openai.WithToken(apiKey),
		openai.WithEmbeddingModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	return newTextEmbedder(embedder), nil
}

func newTextEmbedder(embedder embeddings.Embedder) *TextEmbedder {
	return &TextEmbedder{
		embedder: embedder,
		logger:   slog.Default().With("component", "text-embedder"),
	}
}

// Embed generates an embedding for the given text
func (e *TextEmbedder) Embed(ctx context.Context, text string) (*pgvector.Vector, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	values, err := e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("empty embedding returned")
	}

	vec := pgvector.NewVector(values)
	return &vec, nil
}

// EmbedDocuments generates embeddings for multiple texts, in input order
func (e *TextEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	e.logger.Debug("embedding documents", "count", len(texts))

	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		e.logger.Error("failed to embed documents", "count", len(texts), "err", err)
		return nil, fmt.Errorf("failed to embed documents: %w", err)
	}
	return vectors, nil
}
