package documents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/pgvector/pgvector-go"
	"golang.org/x/time/rate"

	"github.com/dream-ai/bp-assistant/internal/db"
)

// ErrNoContent is returned when a document yields no text to index
var ErrNoContent = errors.New("document contains no extractable text")

// Embedder turns chunk texts into vectors, one per input, in input order
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// RecordWriter persists embedded chunks
type RecordWriter interface {
	EnsureTable(ctx context.Context, table string, dimension int) error
	InsertRecordsBatch(ctx context.Context, table string, records []*db.Record) error
}

// Processor runs the ingestion pipeline: load, chunk, embed, store
type Processor struct {
	parser       Parser
	embedder     Embedder
	store        RecordWriter
	table        string
	dimension    int
	chunkSize    int
	chunkOverlap int
	batchSize    int
	pool         *ants.Pool
	limiter      *rate.Limiter
	logger       *slog.Logger
}

// Option configures a Processor
type Option func(*Processor) error

// WithPoolSize sets how many embedding batches run concurrently
func WithPoolSize(size int) Option {
	return func(p *Processor) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if p.pool != nil {
			p.pool.Release()
		}
		p.pool = pool
		return nil
	}
}

// WithBatchSize sets how many chunks go into one embedding request and one insert batch
func WithBatchSize(size int) Option {
	return func(p *Processor) error {
		if size < 1 {
			size = 1
		}
		p.batchSize = size
		return nil
	}
}

// WithRateLimit caps embedding requests per second. Zero or less disables pacing.
func WithRateLimit(requestsPerSecond float64) Option {
	return func(p *Processor) error {
		if requestsPerSecond <= 0 {
			p.limiter = rate.NewLimiter(rate.Inf, 0)
			return nil
		}
		p.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
		return nil
	}
}

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger.With("component", "ingestion")
		return nil
	}
}

// NewProcessor creates a new document processor writing into table
func NewProcessor(
	parser Parser,
	embedder Embedder,
	store RecordWriter,
	table string,
	dimension int,
	chunkSize, chunkOverlap int,
	opts ...Option,
) (*Processor, error) {
	if _, err := Split("x", chunkSize, chunkOverlap); err != nil {
		return nil, err
	}

	p := &Processor{
		parser:       parser,
		embedder:     embedder,
		store:        store,
		table:        table,
		dimension:    dimension,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		batchSize:    16,
		limiter:      rate.NewLimiter(rate.Inf, 0),
		logger:       slog.Default().With("component", "ingestion"),
	}

	for _, opt := range append([]Option{WithPoolSize(4)}, opts...) {
		if err := opt(p); err != nil {
			p.Release()
			return nil, err
		}
	}

	return p, nil
}

// Release frees the embedding worker pool
func (p *Processor) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// Ingest loads filePath, chunks it, embeds the chunks and appends them to the table.
// It returns the number of stored records. A load failure writes nothing; an
// embedding or write failure returns the count written so far with the error.
// Running it twice stores every chunk twice.
func (p *Processor) Ingest(ctx context.Context, filePath string) (int, error) {
	pages, err := p.parser.Parse(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to load document: %w", err)
	}

	chunks, err := p.chunkPages(filepath.Base(filePath), pages)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, ErrNoContent
	}
	p.logger.Info("document chunked", "source", filePath, "pages", len(pages), "chunks", len(chunks))

	if err := p.store.EnsureTable(ctx, p.table, p.dimension); err != nil {
		return 0, fmt.Errorf("failed to prepare table: %w", err)
	}

	vectors, err := p.embedChunks(ctx, chunks)
	if err != nil {
		return 0, err
	}

	written := 0
	for start := 0; start < len(chunks); start += p.batchSize {
		end := min(start+p.batchSize, len(chunks))
		records := make([]*db.Record, 0, end-start)
		for i := start; i < end; i++ {
			vec := pgvector.NewVector(vectors[i])
			records = append(records, &db.Record{
				ID:        uuid.New(),
				Embedding: &vec,
				Text:      chunks[i].Text,
				Metadata:  chunks[i].Metadata,
			})
		}
		if err := p.store.InsertRecordsBatch(ctx, p.table, records); err != nil {
			return written, fmt.Errorf("failed to store chunks %d-%d: %w", start, end-1, err)
		}
		written += len(records)
	}

	p.logger.Info("document ingested", "source", filePath, "table", p.table, "records", written)
	return written, nil
}

func (p *Processor) chunkPages(source string, pages []Page) ([]DocumentChunk, error) {
	var chunks []DocumentChunk
	for _, page := range pages {
		texts, err := Split(page.Text, p.chunkSize, p.chunkOverlap)
		if err != nil {
			return nil, err
		}
		for i, text := range texts {
			chunks = append(chunks, DocumentChunk{
				Text: text,
				Metadata: map[string]any{
					"source":   source,
					"page":     page.Number,
					"chunk":    i,
					"checksum": Checksum(text),
				},
			})
		}
	}
	return chunks, nil
}

// embedChunks embeds chunks in batches on the worker pool, keeping input order
func (p *Processor) embedChunks(ctx context.Context, chunks []DocumentChunk) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	for start := 0; start < len(chunks); start += p.batchSize {
		end := min(start+p.batchSize, len(chunks))
		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Text)
		}

		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			if err := p.limiter.Wait(ctx); err != nil {
				fail(err)
				return
			}
			embedded, err := p.embedder.EmbedDocuments(ctx, texts)
			if err != nil {
				fail(fmt.Errorf("failed to embed chunks %d-%d: %w", start, end-1, err))
				return
			}
			if len(embedded) != len(texts) {
				fail(fmt.Errorf("embedder returned %d vectors for %d chunks", len(embedded), len(texts)))
				return
			}
			for i, v := range embedded {
				if len(v) != p.dimension {
					fail(fmt.Errorf("chunk %d: embedding has %d dimensions, want %d", start+i, len(v), p.dimension))
					return
				}
				vectors[start+i] = v
			}
		})
		if err != nil {
			wg.Done()
			fail(fmt.Errorf("failed to schedule embedding: %w", err))
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return vectors, nil
}
