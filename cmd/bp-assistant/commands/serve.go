package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/dream-ai/bp-assistant/internal/server"
)

// ServeAction runs the HTTP chat server until the process is signalled
func ServeAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(ctx, cmd.String("env"), os.Stdout)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	orchestrator, err := appCtx.NewOrchestrator()
	if err != nil {
		return err
	}

	port := appCtx.Config.Server.Port
	if cmd.IsSet("port") {
		port = int(cmd.Int("port"))
	}

	srv := server.New(orchestrator,
		server.WithStaticDir(appCtx.Config.Server.StaticDir),
		server.WithLogger(appCtx.Logger),
	)
	return srv.ListenAndServe(ctx, fmt.Sprintf(":%d", port))
}
