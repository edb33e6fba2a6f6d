package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCommand()
	for _, name := range []string{"serve", "worker", "migrate"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestCommandContext_FlagOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", ":memory:")
	t.Setenv("LOG_LEVEL", "info")

	ctx := &commandContext{logLevel: "debug", logFormat: "console"}
	cfg, err := ctx.load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)

	again, err := ctx.load()
	require.NoError(t, err)
	assert.Same(t, cfg, again)
}

func TestCommandContext_InvalidConfig(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	_, err := (&commandContext{}).load()
	assert.Error(t, err)
}

func TestMigrateAndWorkerOnce_SQLite(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", t.TempDir()+"/contentops.db")

	root := newRootCommand()
	root.SetArgs([]string{"migrate"})
	require.NoError(t, root.Execute())

	root = newRootCommand()
	root.SetArgs([]string{"worker", "--once"})
	require.NoError(t, root.Execute())
}
