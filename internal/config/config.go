// Package config loads the optional sireval run-configuration file.
// Flags always win over the file; the file exists so a lab can pin its
// mapping policy and output layout once per project.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"sireval/internal/resist"
)

// Config is the YAML run configuration.
type Config struct {
	// Mapping is the level→label policy name (default, conservative, strict).
	Mapping string `yaml:"mapping"`
	// OutputDir receives the run artifacts.
	OutputDir string `yaml:"output_dir"`
	// HistoryDB is the SQLite run-history path; empty disables history.
	HistoryDB string `yaml:"history_db"`
	// LogFormat is "text" or "json".
	LogFormat string `yaml:"log_format"`
}

// Default returns the built-in configuration used when no file is given.
func Default() Config {
	return Config{
		Mapping:   string(resist.PolicyDefault),
		OutputDir: "results",
		LogFormat: "text",
	}
}

// Load reads a YAML config file and fills unset fields with defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.Mapping == "" {
		cfg.Mapping = string(resist.PolicyDefault)
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "results"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}

	if _, err := resist.ParsePolicy(cfg.Mapping); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
