package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/vkboot/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadApplicationConfigMissingFile(t *testing.T) {
	cfg, err := LoadApplicationConfig(filepath.Join(t.TempDir(), "absent.toml"))

	require.NoError(t, err)
	assert.Equal(t, DefaultApplicationConfig(), cfg)
}

func TestLoadApplicationConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
name = "Triangle"
width = 1280
log_level = "warn"
`)

	cfg, err := LoadApplicationConfig(path)

	require.NoError(t, err)
	assert.Equal(t, "Triangle", cfg.Name)
	assert.Equal(t, uint32(1280), cfg.StartWidth)
	assert.Equal(t, uint32(450), cfg.StartHeight, "unset keys keep their defaults")
	assert.Equal(t, core.LogLevelWarn, cfg.LogLevel)
}

func TestLoadApplicationConfigInvalid(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{"malformed", `width = `},
		{"wrong type", `width = "wide"`},
		{"zero height", `height = 0`},
		{"empty name", `name = ""`},
		{"unknown level", `log_level = "trace"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadApplicationConfig(writeConfig(t, tt.contents))
			assert.Error(t, err)
		})
	}
}
