package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/dream-ai/bp-assistant/internal/documents"
)

// IngestAction loads the manual PDF into the vector table
func IngestAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(ctx, cmd.String("env"), os.Stdout)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	cfg := appCtx.Config
	file := cmd.String("file")
	if file == "" {
		file = cfg.Paths.SourceDocument
	}
	table := cmd.String("table")
	if table == "" {
		table = cfg.Database.Table
	}

	processor, err := documents.NewProcessor(
		documents.NewPDFParser(),
		appCtx.Embedder,
		appCtx.Database,
		table,
		cfg.Embeddings.Dimension,
		cfg.Processing.ChunkSize,
		cfg.Processing.ChunkOverlap,
		documents.WithPoolSize(cfg.Embeddings.Workers),
		documents.WithBatchSize(cfg.Embeddings.BatchSize),
		documents.WithRateLimit(cfg.Embeddings.RequestsPerSecond),
		documents.WithLogger(appCtx.Logger),
	)
	if err != nil {
		return err
	}
	defer processor.Release()

	n, err := processor.Ingest(ctx, file)
	if err != nil {
		fmt.Printf("Ingestion failed after %d chunks: %v\n", n, err)
		return err
	}

	fmt.Printf("Ingested %d chunks from %s into %s\n", n, file, table)
	return nil
}
