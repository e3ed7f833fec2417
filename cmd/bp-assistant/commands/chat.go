package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/dream-ai/bp-assistant/internal/tui"
)

// ChatAction opens the interactive console chat
func ChatAction(ctx context.Context, cmd *cli.Command) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("chat needs an interactive terminal; use serve for programmatic access")
	}

	// the terminal belongs to the chat view, so logs go to a file or nowhere
	var logOutput io.Writer = io.Discard
	if path := cmd.String("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logOutput = f
	}

	appCtx, err := NewAppContext(ctx, cmd.String("env"), logOutput)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	orchestrator, err := appCtx.NewOrchestrator()
	if err != nil {
		return err
	}

	return tui.Run(ctx, orchestrator, cmd.String("user"))
}
