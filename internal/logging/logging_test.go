package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_HasComponent(t *testing.T) {
	var buf bytes.Buffer
	Init(slog.LevelDebug, "text", &buf)

	New("metrics").Info("report ready")

	out := buf.String()
	if !strings.Contains(out, "component=metrics") {
		t.Errorf("expected component=metrics in output: %s", out)
	}
	if !strings.Contains(out, "report ready") {
		t.Errorf("expected message in output: %s", out)
	}
}

func TestInit_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	Init(slog.LevelInfo, "json", &buf)

	slog.Info("hello")

	if !strings.Contains(buf.String(), `"msg":"hello"`) {
		t.Errorf("expected JSON output, got: %s", buf.String())
	}
}

func TestInit_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	Init(slog.LevelInfo, "text", &buf)

	slog.Debug("hidden")

	if buf.Len() != 0 {
		t.Errorf("debug record should be filtered: %s", buf.String())
	}
}

func TestLevel(t *testing.T) {
	if Level(true) != slog.LevelDebug {
		t.Error("verbose should map to debug")
	}
	if Level(false) != slog.LevelInfo {
		t.Error("non-verbose should map to info")
	}
}
