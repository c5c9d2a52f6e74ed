package config

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/karupanerura/pdef-light/internal/trace"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

type Format string

const (
	TextFormat Format = "text"
	JSONFormat Format = "json"
	YAMLFormat Format = "yaml"
)

var formats = []Format{TextFormat, JSONFormat, YAMLFormat}

// Config controls a run of the driver.
type Config struct {
	Echo   bool            `mapstructure:"echo"`
	Trace  []trace.Channel `mapstructure:"trace"`
	Format Format          `mapstructure:"format"`
	Tokens bool            `mapstructure:"tokens"`
}

func Default() *Config {
	return &Config{Format: TextFormat}
}

// Load reads a YAML config file.
func Load(filePath string) (*Config, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("os.Open(%q): %w", filePath, err)
	}
	defer f.Close()

	return Parse(f)
}

func Parse(r io.Reader) (*Config, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("io.ReadAll: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal: %w", err)
	}

	cfg := Default()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      cfg,
	})
	if err != nil {
		return nil, fmt.Errorf("mapstructure.NewDecoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("mapstructure.Decode: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if !lo.Contains(formats, c.Format) {
		return fmt.Errorf("unsupported format: %q", c.Format)
	}
	for _, ch := range c.Trace {
		if !trace.IsKnown(ch) {
			return fmt.Errorf("unknown trace channel: %q", ch)
		}
	}
	return nil
}

// Overrides holds values given on the command line.
type Overrides struct {
	Echo   bool
	Trace  []trace.Channel
	Format Format
	Tokens bool
}

// Merge applies command line overrides. Switches can only be turned on, and
// a format other than text wins over the file.
func (c *Config) Merge(o Overrides) {
	c.Echo = c.Echo || o.Echo
	c.Tokens = c.Tokens || o.Tokens
	c.Trace = lo.Uniq(append(c.Trace, o.Trace...))
	if o.Format != "" && o.Format != TextFormat {
		c.Format = o.Format
	}
}

// Register turns on the configured trace channels.
func (c *Config) Register(l *trace.Logger) {
	for _, ch := range c.Trace {
		l.Register(ch)
	}
}
