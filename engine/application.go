package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/vkboot/engine/core"
)

// DefaultConfigFile is read from the working directory when present.
const DefaultConfigFile = "vkboot.toml"

type ApplicationConfig struct {
	// Window starting width.
	StartWidth uint32 `toml:"width"`
	// Window starting height.
	StartHeight uint32 `toml:"height"`
	// The application name used for the window title and the Vulkan instance.
	Name     string        `toml:"name"`
	LogLevel core.LogLevel `toml:"log_level"`
}

func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		StartWidth:  800,
		StartHeight: 450,
		Name:        "Vulkan Test",
		LogLevel:    core.LogLevelDebug,
	}
}

// LoadApplicationConfig overlays the TOML file at path on the defaults. A
// missing file is not an error.
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	cfg := DefaultApplicationConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *ApplicationConfig) Validate() error {
	if c.StartWidth == 0 || c.StartHeight == 0 {
		return fmt.Errorf("window size must be non-zero, got %dx%d", c.StartWidth, c.StartHeight)
	}
	if c.Name == "" {
		return errors.New("name must not be empty")
	}
	switch c.LogLevel {
	case core.LogLevelDebug, core.LogLevelInfo, core.LogLevelWarn, core.LogLevelError:
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}
