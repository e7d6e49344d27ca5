package gl

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigEnv names a config file to load instead of the default locations.
	ConfigEnv = "GLCONFIG"
	// PathEnv is a path list of extra import roots.
	PathEnv = "GLPATH"
	// ConfigFileName is looked up in the working directory.
	ConfigFileName = "gl.yaml"
)

// Config is the runtime configuration read from gl.yaml.
type Config struct {
	Path string `yaml:"-"`

	SearchPath         []string `yaml:"search_path"`
	Prompt             string   `yaml:"prompt"`
	ContinuationPrompt string   `yaml:"continuation_prompt"`
	HistoryFile        string   `yaml:"history_file"`
	LogLevel           string   `yaml:"log_level"`
	InitSymbol         string   `yaml:"init_symbol"`
}

func DefaultConfig() *Config {
	return &Config{
		Prompt:             "> ",
		ContinuationPrompt: "... ",
		HistoryFile:        ".gl_history",
		LogLevel:           "warn",
		InitSymbol:         "Init",
	}
}

// LoadConfig parses path on top of the defaults. Unknown keys are rejected.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse %s: %w", abs, err)
	}
	cfg.Path = abs
	if err := cfg.normalize(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", abs, err)
	}
	return cfg, nil
}

// FindConfig loads $GLCONFIG, else ./gl.yaml, else
// $HOME/.config/gl/gl.yaml. With none present it returns the defaults.
func FindConfig() (*Config, error) {
	if p := os.Getenv(ConfigEnv); p != "" {
		return LoadConfig(p)
	}
	candidates := []string{ConfigFileName}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "gl", ConfigFileName))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return LoadConfig(c)
		}
	}
	return DefaultConfig(), nil
}

// Marshal renders the effective configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("config: marshal: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("config: encoder close: %w", err)
	}
	return buf.Bytes(), nil
}

func (c *Config) normalize() error {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	c.InitSymbol = strings.TrimSpace(c.InitSymbol)
	paths := c.SearchPath[:0]
	for _, p := range c.SearchPath {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	c.SearchPath = paths
	return nil
}

// importRoots lists the directories searched after the importer's directory
// and the working directory: $GLPATH entries, then search_path entries
// (relative ones resolved against the config file's directory).
func (c *Config) importRoots() []string {
	var roots []string
	if env := os.Getenv(PathEnv); env != "" {
		for _, p := range filepath.SplitList(env) {
			if p != "" {
				roots = append(roots, p)
			}
		}
	}
	for _, p := range c.SearchPath {
		if !filepath.IsAbs(p) && c.Path != "" {
			p = filepath.Join(filepath.Dir(c.Path), p)
		}
		roots = append(roots, p)
	}
	return roots
}
