package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/coreman2200/funtimes-arborluminis/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := config.Default()
	assert.Equal(t, "spi", c.Driver)
	assert.Equal(t, 25, c.LEDs)
	assert.Equal(t, 2, c.FPS)
	assert.Equal(t, 1, c.Brightness)
	assert.Equal(t, 40, c.FramesPerPattern)
	assert.Equal(t, []string{"swirl", "spin", "sparkle", "random"}, c.Patterns)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	in := config.Default()
	in.Driver = "term"
	in.Brightness = 7
	in.Patterns = []string{"sparkle"}
	in.SPI.Port = "SPI0.0"

	require.NoError(t, config.Save(path, in))
	out, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadPartialYAMLLeavesZeroValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("driver: term\nfps: 10\n"), 0644))

	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "term", c.Driver)
	assert.Equal(t, 10, c.FPS)
	assert.Zero(t, c.LEDs, "unset fields stay zero for the flag merge")
	assert.Empty(t, c.Patterns)
}
