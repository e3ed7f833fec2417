package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/dream-ai/bp-assistant/config"
)

// InitConfigAction writes the default configuration file. Secrets stay in the environment.
func InitConfigAction(_ context.Context, cmd *cli.Command) error {
	path := cmd.String("path")
	if path == "" {
		path = config.Path()
	}
	if err := config.Default().Save(path); err != nil {
		return err
	}
	fmt.Printf("Wrote default configuration to %s\n", path)
	return nil
}
