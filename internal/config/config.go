// Package config handles configuration loading and defaults.
package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Default values.
const (
	DefaultDataFile        = "board.json"
	DefaultSchemaFile      = "board.schema.json"
	DefaultProjectsRoot    = "~/projects"
	DefaultBackend         = "fs"
	DefaultBatchSize       = 6
	DefaultIdleAfterDays   = 30
	DefaultPausedAfterDays = 90
	DefaultRecentCommits   = 5
	DefaultServeAddr       = ":8080"
)

// RepoOverride is per-repository display configuration; values set here
// take precedence over derived ones.
type RepoOverride struct {
	Emoji       string `toml:"emoji"`
	Color       string `toml:"color"`
	Description string `toml:"description"`
	Status      string `toml:"status"`
	Priority    int    `toml:"priority"`
}

// Config holds the full configuration for pulse.
type Config struct {
	// Paths
	DataFile     string `toml:"data_file"`
	SchemaFile   string `toml:"schema_file"`
	ProjectsRoot string `toml:"projects_root"`

	// Scan settings
	Backend         string   `toml:"backend"` // fs or github
	Owners          []string `toml:"owners"`
	Tracked         []string `toml:"tracked"`
	SkipRepos       []string `toml:"skip_repos"`
	BatchSize       int      `toml:"batch_size"`
	IdleAfterDays   int      `toml:"idle_after_days"`
	PausedAfterDays int      `toml:"paused_after_days"`
	RecentCommits   int      `toml:"recent_commits"`

	// Per-repository overrides, keyed by repository name.
	Repos map[string]RepoOverride `toml:"repos"`

	// Server
	ServeAddr string `toml:"serve_addr"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`

	// API credential, read from the environment only.
	Token string `toml:"-"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.config/pulse/pulse.toml or ~/.pulse/pulse.toml)
// 3. Project config file (pulse.toml or .pulse.toml in current directory)
// 4. Environment variables
// 5. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	if path := findUserConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", path, err)
		}
	}

	if path := findProjectConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", path, err)
		}
	}

	loadFromEnv(cfg)

	if err := parseFlags(cfg, fs, args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.DataFile = DefaultDataFile
	cfg.SchemaFile = DefaultSchemaFile
	cfg.ProjectsRoot = DefaultProjectsRoot
	cfg.Backend = DefaultBackend
	cfg.BatchSize = DefaultBatchSize
	cfg.IdleAfterDays = DefaultIdleAfterDays
	cfg.PausedAfterDays = DefaultPausedAfterDays
	cfg.RecentCommits = DefaultRecentCommits
	cfg.ServeAddr = DefaultServeAddr
	cfg.LogLevel = "info"
	cfg.LogFormat = "text"
}

func loadConfigFile(cfg *Config, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	return err
}

// parseFlags registers the global flags on fs and applies any that were
// explicitly set. Flags override every other source.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	dataFile := fs.String("data", cfg.DataFile, "Path to the board JSON document")
	schemaFile := fs.String("schema", cfg.SchemaFile, "Path to the board JSON Schema")
	root := fs.String("root", cfg.ProjectsRoot, "Projects root directory (fs backend)")
	backend := fs.String("backend", cfg.Backend, "Content source backend (fs|github)")
	owners := fs.String("owners", strings.Join(cfg.Owners, ","), "Comma-separated GitHub accounts to scan")
	batch := fs.Int("batch", cfg.BatchSize, "Repositories probed concurrently per batch")
	addr := fs.String("addr", cfg.ServeAddr, "Listen address for serve")
	logLevel := fs.String("log-level", cfg.LogLevel, "Log level (debug|info|warn|error)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.DataFile = *dataFile
	cfg.SchemaFile = *schemaFile
	cfg.ProjectsRoot = *root
	cfg.Backend = *backend
	if *owners != "" {
		cfg.Owners = splitAndTrim(*owners, ",")
	}
	cfg.BatchSize = *batch
	cfg.ServeAddr = *addr
	cfg.LogLevel = *logLevel

	return nil
}

// finalizeConfig computes derived values and validates paths.
func finalizeConfig(cfg *Config) error {
	cfg.ProjectsRoot = expandPath(cfg.ProjectsRoot)

	if cfg.ProjectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cfg.ProjectRoot = wd
	}

	if !filepath.IsAbs(cfg.DataFile) {
		cfg.DataFile = filepath.Join(cfg.ProjectRoot, cfg.DataFile)
	}
	if !filepath.IsAbs(cfg.SchemaFile) {
		cfg.SchemaFile = filepath.Join(cfg.ProjectRoot, cfg.SchemaFile)
	}

	if cfg.BatchSize < 1 {
		return fmt.Errorf("batch_size must be at least 1, got %d", cfg.BatchSize)
	}
	switch cfg.Backend {
	case "fs", "github":
	default:
		return fmt.Errorf("unknown backend %q, expected fs or github", cfg.Backend)
	}

	return nil
}

// Override returns the per-repo override for a repository name, matched
// case-insensitively.
func (c *Config) Override(name string) (RepoOverride, bool) {
	for key, ov := range c.Repos {
		if strings.EqualFold(key, name) {
			return ov, true
		}
	}
	return RepoOverride{}, false
}

// Skipped reports whether a repository name is on the skip list.
func (c *Config) Skipped(name string) bool {
	for _, s := range c.SkipRepos {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}

func findUserConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	candidates := []string{
		filepath.Join(home, ".config", "pulse", "pulse.toml"),
		filepath.Join(home, ".pulse", "pulse.toml"),
	}
	for _, path := range candidates {
		if fileExists(path) {
			return path
		}
	}
	return ""
}

func findProjectConfigFile() string {
	for _, name := range []string{"pulse.toml", ".pulse.toml"} {
		if fileExists(name) {
			return name
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(path, "~"), "/"))
	}
	return path
}

// splitAndTrim splits a string by sep and trims whitespace from each
// part, omitting empty parts.
func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
