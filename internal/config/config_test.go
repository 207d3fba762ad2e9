package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sireval.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "mapping: strict\noutput_dir: out\nhistory_db: runs.db\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mapping != "strict" || cfg.OutputDir != "out" || cfg.HistoryDB != "runs.db" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %q, want default text", cfg.LogFormat)
	}
}

func TestLoad_UnknownPolicy(t *testing.T) {
	path := writeConfig(t, "mapping: lenient\n")
	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Mapping != "default" || cfg.OutputDir != "results" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}
