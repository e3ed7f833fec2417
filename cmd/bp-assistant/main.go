package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/dream-ai/bp-assistant/cmd/bp-assistant/commands"
	"github.com/dream-ai/bp-assistant/internal/chat"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "bp-assistant",
		Usage: "question answering over the blood pressure monitor manual",
		Commands: []*cli.Command{
			{
				Name:  "ingest",
				Usage: "chunk, embed and store the manual PDF",
				Flags: []cli.Flag{
					envFlag(),
					&cli.StringFlag{
						Name:  "file",
						Usage: "PDF to ingest (defaults to paths.source_document)",
					},
					&cli.StringFlag{
						Name:  "table",
						Usage: "destination table (defaults to database.table)",
					},
				},
				Action: commands.IngestAction,
			},
			{
				Name:  "serve",
				Usage: "start the HTTP chat server",
				Flags: []cli.Flag{
					envFlag(),
					&cli.IntFlag{
						Name:  "port",
						Usage: "HTTP port (defaults to server.port or PORT)",
					},
				},
				Action: commands.ServeAction,
			},
			{
				Name:  "chat",
				Usage: "chat with the assistant in the terminal",
				Flags: []cli.Flag{
					envFlag(),
					&cli.StringFlag{
						Name:  "user",
						Usage: "conversation id",
						Value: chat.DefaultUserID,
					},
					&cli.StringFlag{
						Name:  "log-file",
						Usage: "write logs to this file instead of discarding them",
					},
				},
				Action: commands.ChatAction,
			},
			{
				Name:  "init-config",
				Usage: "write the default config file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "path",
						Usage: "where to write it (defaults to BP_ASSISTANT_CONFIG or config.yaml)",
					},
				},
				Action: commands.InitConfigAction,
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func envFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "env",
		Usage: "path to the environment file",
		Value: ".env",
	}
}
