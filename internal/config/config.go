// Package config loads arbor.yaml, the project file read by the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the project file name looked up in the working directory.
const DefaultFile = "arbor.yaml"

// Config is the CLI configuration.
type Config struct {
	LogLevel string `mapstructure:"log_level" json:"log_level"`

	// PageFile is the page-object tree loaded by every command.
	PageFile string `mapstructure:"page_file" json:"page_file"`

	// Pages maps the URLs the HTML engine serves to HTML files.
	Pages map[string]string `mapstructure:"pages" json:"pages"`

	Runner RunnerConfig `mapstructure:"runner" json:"runner"`
	Trace  TraceConfig  `mapstructure:"trace" json:"trace"`
	HTTP   HTTPConfig   `mapstructure:"http" json:"http"`
}

// RunnerConfig holds script execution defaults.
type RunnerConfig struct {
	ContinueOnError bool          `mapstructure:"continue_on_error" json:"continue_on_error"`
	StepTimeout     time.Duration `mapstructure:"step_timeout" json:"step_timeout"`
}

// TraceConfig sizes the span recorder. Zero disables it.
type TraceConfig struct {
	Capacity int `mapstructure:"capacity" json:"capacity"`
}

// HTTPConfig configures arbor serve.
type HTTPConfig struct {
	Addr string `mapstructure:"addr" json:"addr"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		PageFile: "pages.yaml",
		Pages:    map[string]string{},
		Runner:   RunnerConfig{StepTimeout: 10 * time.Second},
		Trace:    TraceConfig{Capacity: 256},
		HTTP:     HTTPConfig{Addr: "127.0.0.1:8080"},
	}
}

// Load reads path (YAML, or JSON by extension) over the defaults.
// A missing file yields the defaults. Relative paths inside the file are
// resolved against the file's directory.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var raw map[string]any
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		err = json.Unmarshal(data, &raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	if err := decode(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	cfg.resolve(filepath.Dir(path))
	return cfg, nil
}

func decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

func (c *Config) resolve(dir string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	c.PageFile = abs(c.PageFile)
	for url, file := range c.Pages {
		c.Pages[url] = abs(file)
	}
}
