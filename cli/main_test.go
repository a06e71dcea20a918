package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer

	root := newRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())

	assert.Equal(t, "craftos dev\n", out.String())
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "craftos.yaml")
	require.NoError(t, os.WriteFile(path, []byte("computer:\n  id: 2\n  label: desk\nlog:\n  level: warn\n"), 0o644))

	root := newRootCommand()
	require.NoError(t, root.ParseFlags([]string{"--config", path, "--id", "5", "--root", "/tmp/five"}))

	flags := &rootFlags{}
	flags.config, _ = root.Flags().GetString("config")
	flags.id, _ = root.Flags().GetInt("id")
	flags.root, _ = root.Flags().GetString("root")

	cfg, err := loadConfig(root, flags)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Computer.ID)
	assert.Equal(t, "desk", cfg.Computer.Label)
	assert.Equal(t, "/tmp/five", cfg.Storage.Root)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestRun_Headless(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "startup"), []byte("echo booted\nshutdown\n"), 0o644))

	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"--headless", "--root", dir, "--log-level", "error"})
	require.NoError(t, root.Execute())

	assert.Contains(t, out.String(), "booted\nGoodbye\n")
}
