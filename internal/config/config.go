package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/stmtlens/stmtlens/internal/header"
	"github.com/stmtlens/stmtlens/internal/model"
	"github.com/stmtlens/stmtlens/internal/templates"
)

// FileName is the project configuration file.
const FileName = "stmtlens.yaml"

// Config represents the top-level stmtlens.yaml configuration.
type Config struct {
	Templates      TemplatesConfig   `yaml:"templates"`
	Header         HeaderConfig      `yaml:"header"`
	DefaultMapping map[string]string `yaml:"default_mapping,omitempty"`
	Dates          DatesConfig       `yaml:"dates"`
	Export         ExportConfig      `yaml:"export"`
	LogLevel       string            `yaml:"log_level"`
}

// TemplatesConfig lists the template documents, merged global first.
type TemplatesConfig struct {
	Global string `yaml:"global"`
	User   string `yaml:"user"`
}

// HeaderConfig controls header row detection.
type HeaderConfig struct {
	Strategy   string   `yaml:"strategy"` // "auto" or "density"
	Depth      int      `yaml:"depth"`
	MinMatches int      `yaml:"min_matches"`
	Keywords   []string `yaml:"keywords,omitempty"`
}

// DatesConfig adds date layouts (Go reference time syntax) tried before the
// built-in ones.
type DatesConfig struct {
	Layouts []string `yaml:"layouts,omitempty"`
}

// ExportConfig controls report output.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// Load reads a stmtlens.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads <dir>/stmtlens.yaml, or returns Default when the
// project has no config file.
func LoadOrDefault(dir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Templates: TemplatesConfig{
			Global: filepath.Join("templates", "global_templates.json"),
			User:   filepath.Join("templates", "user_templates.json"),
		},
		Header: HeaderConfig{
			Strategy:   header.StrategyAuto,
			Depth:      header.DefaultDepth,
			MinMatches: header.DefaultMinMatches,
		},
		Export: ExportConfig{
			Dir: "exports",
		},
		LogLevel: "info",
	}
}

// TemplateSources returns the template documents in merge order, resolved
// against the project directory.
func (c *Config) TemplateSources(dir string) []templates.Source {
	var sources []templates.Source
	if c.Templates.Global != "" {
		sources = append(sources, templates.Source{Name: "global", Path: resolve(dir, c.Templates.Global)})
	}
	if c.Templates.User != "" {
		sources = append(sources, templates.Source{Name: "user", Path: resolve(dir, c.Templates.User)})
	}
	return sources
}

// UserTemplatePath returns the user template document path.
func (c *Config) UserTemplatePath(dir string) string {
	return resolve(dir, c.Templates.User)
}

// HeaderDetector builds the configured header detector.
func (c *Config) HeaderDetector() (header.Detector, error) {
	return header.New(header.Options{
		Strategy:   c.Header.Strategy,
		Depth:      c.Header.Depth,
		MinMatches: c.Header.MinMatches,
		Keywords:   c.Header.Keywords,
	})
}

// Fallback returns the configured last-resort mapping. It is empty when the
// config does not override the built-in default.
func (c *Config) Fallback() (model.FieldMapping, error) {
	m, err := model.MappingFromKeys(c.DefaultMapping)
	if err != nil {
		return model.FieldMapping{}, fmt.Errorf("default_mapping: %w", err)
	}
	return m, nil
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
