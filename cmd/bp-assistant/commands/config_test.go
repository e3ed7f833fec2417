package commands

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/dream-ai/bp-assistant/config"
)

func TestInitConfigAction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cmd := &cli.Command{
		Name:   "init-config",
		Flags:  []cli.Flag{&cli.StringFlag{Name: "path"}},
		Action: InitConfigAction,
	}

	require.NoError(t, cmd.Run(context.Background(), []string{"init-config", "--path", path}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "table: bp_docs")
	assert.NotContains(t, string(data), "api_key")
}

func TestNewAppContext_RequiresSecrets(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BP_ASSISTANT_CONFIG", filepath.Join(dir, "missing.yaml"))
	t.Setenv("DATABASE_URL", "")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := NewAppContext(context.Background(), filepath.Join(dir, "none.env"), os.Stdout)
	assert.ErrorIs(t, err, config.ErrMissingDatabaseURL)
}

func TestNewMemoryStore(t *testing.T) {
	ac := &AppContext{Config: config.Default(), Logger: slog.Default()}

	store, err := ac.newMemoryStore()
	require.NoError(t, err)
	assert.NotNil(t, store)

	ac.Config.Memory.Backend = "badger"
	ac.Config.Memory.BadgerPath = filepath.Join(t.TempDir(), "sessions")
	store, err = ac.newMemoryStore()
	require.NoError(t, err)
	assert.NotNil(t, store)
	assert.Len(t, ac.closers, 1)
	ac.Close()

	ac.Config.Memory.Backend = "redis"
	_, err = ac.newMemoryStore()
	assert.Error(t, err)
}
