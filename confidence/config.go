package confidence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tailored-agentic-units/eventsender/engine"
	"github.com/tailored-agentic-units/eventsender/upload"
)

// Config holds initialization parameters for every subsystem of the
// client. ClientSecret, when set, overrides Upload.ClientSecret.
type Config struct {
	ClientSecret string                 `json:"client_secret,omitempty" yaml:"client_secret,omitempty"`
	Observer     string                 `json:"observer,omitempty" yaml:"observer,omitempty"`
	Engine       engine.Config          `json:"engine" yaml:"engine"`
	Upload       upload.Config          `json:"upload" yaml:"upload"`
	Transport    upload.TransportConfig `json:"transport" yaml:"transport"`
}

// DefaultConfig returns a Config with defaults for all subsystems. The
// client secret is left empty; New rejects it until one is provided.
func DefaultConfig() Config {
	return Config{
		Observer:  "slog",
		Engine:    engine.DefaultConfig(),
		Upload:    upload.DefaultConfig(),
		Transport: upload.DefaultTransportConfig(),
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Engine.Merge(&source.Engine)
	c.Upload.Merge(&source.Upload)
	c.Transport.Merge(&source.Transport)

	if source.ClientSecret != "" {
		c.ClientSecret = source.ClientSecret
	}
	if source.Observer != "" {
		c.Observer = source.Observer
	}
}

// LoadConfig reads a JSON or YAML config file (by extension), merges it
// with defaults, and returns the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &loaded)
	case ".json":
		err = json.Unmarshal(data, &loaded)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedConfig, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
