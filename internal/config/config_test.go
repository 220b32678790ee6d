package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "codelab.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

const validConfig = `
project: intro-python
version: 1
lessons:
  paths:
    - ./lessons/
store:
  driver: sqlite
  dsn: codelab.db
runtime:
  timeout_ms: 5000
  ranges:
    - min: 1
      max: 999
      language: starlark
widgets:
  step_delay_ms: 600
`

func TestLoadProjectConfig(t *testing.T) {
	cfg, err := LoadProjectConfig(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Project != "intro-python" {
		t.Fatalf("project = %q", cfg.Project)
	}
	if cfg.Runtime.Timeout() != 5*time.Second {
		t.Fatalf("timeout = %v", cfg.Runtime.Timeout())
	}
	if cfg.Widgets.StepDelay() != 600*time.Millisecond {
		t.Fatalf("step delay = %v", cfg.Widgets.StepDelay())
	}
}

func TestDefaults(t *testing.T) {
	var rt RuntimeConfig
	if rt.Timeout() != 5*time.Second {
		t.Fatalf("default timeout = %v", rt.Timeout())
	}
	var w WidgetsConfig
	if w.StepDelay() != 700*time.Millisecond {
		t.Fatalf("default step delay = %v", w.StepDelay())
	}
}

func TestValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"missing project", "version: 1\nlessons:\n  paths: [./l/]\n"},
		{"bad version", "project: p\nversion: 2\nlessons:\n  paths: [./l/]\n"},
		{"no lesson paths", "project: p\nversion: 1\n"},
		{"bad driver", "project: p\nversion: 1\nlessons:\n  paths: [./l/]\nstore:\n  driver: mongo\n  dsn: x\n"},
		{"driver without dsn", "project: p\nversion: 1\nlessons:\n  paths: [./l/]\nstore:\n  driver: sqlite\n"},
		{"inverted range", "project: p\nversion: 1\nlessons:\n  paths: [./l/]\nruntime:\n  ranges:\n    - {min: 10, max: 1, language: starlark}\n"},
		{"range without language", "project: p\nversion: 1\nlessons:\n  paths: [./l/]\nruntime:\n  ranges:\n    - {min: 1, max: 10}\n"},
	}
	for _, tc := range cases {
		if _, err := LoadProjectConfig(writeConfig(t, tc.content)); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}
