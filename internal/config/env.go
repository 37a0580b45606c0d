package config

import (
	"fmt"
	"os"
)

// loadFromEnv overrides config from environment variables. The API
// token is env-only so credentials never land in config files.
func loadFromEnv(cfg *Config) {
	if v := os.Getenv("PULSE_DATA"); v != "" {
		cfg.DataFile = v
	}
	if v := os.Getenv("PULSE_SCHEMA"); v != "" {
		cfg.SchemaFile = v
	}
	if v := os.Getenv("PULSE_PROJECTS_ROOT"); v != "" {
		cfg.ProjectsRoot = v
	}
	if v := os.Getenv("PULSE_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("PULSE_OWNERS"); v != "" {
		cfg.Owners = splitAndTrim(v, ",")
	}
	if v := os.Getenv("PULSE_SKIP_REPOS"); v != "" {
		cfg.SkipRepos = splitAndTrim(v, ",")
	}
	if v := os.Getenv("PULSE_BATCH_SIZE"); v != "" {
		var i int
		if _, err := fmt.Sscanf(v, "%d", &i); err == nil {
			cfg.BatchSize = i
		}
	}
	if v := os.Getenv("PULSE_ADDR"); v != "" {
		cfg.ServeAddr = v
	}
	if v := os.Getenv("PULSE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PULSE_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("PULSE_LOG_TIMESTAMPS"); v != "" {
		cfg.LogTimestamps = v == "1" || v == "true" || v == "yes"
	}

	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("PULSE_GITHUB_TOKEN"); v != "" {
		cfg.Token = v
	}
}
