// Package config loads the YAML settings shared by the command line runner and
// the evaluation server.
package config

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Journal JournalConfig `yaml:"journal"`
	Server  ServerConfig  `yaml:"server"`
	Output  OutputConfig  `yaml:"output"`
}

// JournalConfig selects where runs are recorded. An empty driver disables the
// journal.
type JournalConfig struct {
	Driver    string        `yaml:"driver"`
	DSN       string        `yaml:"dsn"`
	Retention time.Duration `yaml:"retention"`
}

type ServerConfig struct {
	Addr       string        `yaml:"addr"`
	MaxBody    int           `yaml:"max_body"`
	Recent     int           `yaml:"recent"`
	PruneEvery time.Duration `yaml:"prune_every"`
}

type OutputConfig struct {
	Color bool `yaml:"color"`
}

func Default() Config {
	return Config{
		Journal: JournalConfig{
			Retention: 7 * 24 * time.Hour,
		},
		Server: ServerConfig{
			Addr:       "localhost:8080",
			MaxBody:    64 * 1024,
			Recent:     32,
			PruneEvery: 5 * time.Minute,
		},
		Output: OutputConfig{
			Color: true,
		},
	}
}

// ValidationError aggregates config validation failures.
type ValidationError struct {
	Path   string
	Issues []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("config")
	if e.Path != "" {
		b.WriteString(" ")
		b.WriteString(e.Path)
	}
	b.WriteString(" is invalid:")
	for _, issue := range e.Issues {
		b.WriteString("\n  - ")
		b.WriteString(issue)
	}
	return b.String()
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		if v, ok := err.(*ValidationError); ok {
			v.Path = path
		}
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	issues := []string{}

	switch c.Journal.Driver {
	case "", "sqlite", "postgres":
	default:
		issues = append(issues, fmt.Sprintf("journal.driver must be sqlite or postgres, got '%s'", c.Journal.Driver))
	}
	if c.Journal.Driver != "" && c.Journal.DSN == "" {
		issues = append(issues, "journal.dsn is required when journal.driver is set")
	}
	if c.Journal.Retention < 0 {
		issues = append(issues, "journal.retention must not be negative")
	}
	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		issues = append(issues, fmt.Sprintf("server.addr must be host:port, got '%s'", c.Server.Addr))
	}
	if c.Server.MaxBody <= 0 {
		issues = append(issues, "server.max_body must be positive")
	}
	if c.Server.Recent <= 0 {
		issues = append(issues, "server.recent must be positive")
	}
	if c.Server.PruneEvery <= 0 {
		issues = append(issues, "server.prune_every must be positive")
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}
