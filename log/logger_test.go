package log_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mwantia/craftos/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	level, err := log.Parse("debug")
	require.NoError(t, err)
	assert.Equal(t, log.Debug, level)

	level, err = log.Parse("")
	require.NoError(t, err)
	assert.Equal(t, log.Info, level)

	_, err = log.Parse("verbose")
	assert.Error(t, err)
}

func TestLogger_WritesToFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "craftos.log")

	logger := log.NewLogger("craftos", log.Info, file, true)
	logger.Debug("hidden %d", 1)
	logger.Named("computer").Info("booting computer %d", 7)
	require.NoError(t, logger.Sync())

	content, err := os.ReadFile(file)
	require.NoError(t, err)

	assert.Contains(t, string(content), "booting computer 7")
	assert.Contains(t, string(content), "INFO")
	assert.NotContains(t, string(content), "hidden")
	assert.NotContains(t, string(content), log.ColorReset)
}

func TestLogger_JSON(t *testing.T) {
	file := filepath.Join(t.TempDir(), "craftos.json")

	logger := log.NewLogger("craftos", log.Debug, file, true, log.WithJSON())
	logger.Warn("disk %s is full", "hdd")
	require.NoError(t, logger.Sync())

	content, err := os.ReadFile(file)
	require.NoError(t, err)

	assert.Contains(t, string(content), `"message":"disk hdd is full"`)
	assert.Contains(t, string(content), `"level":"WARN"`)
	assert.Contains(t, string(content), `"service":"craftos"`)
}

func TestNop(t *testing.T) {
	logger := log.Nop()
	logger.Info("nothing")
	assert.Equal(t, "computer", logger.Named("computer").Name)
}
