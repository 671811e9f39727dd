package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mashrufaorc/posephase/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigInitWritesLoadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posephase.toml")

	if _, err := execute(t, "config", "init", path); err != nil {
		t.Fatalf("config init: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("generated config must validate: %v", err)
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posephase.toml")
	if err := os.WriteFile(path, []byte("# existing"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := execute(t, "config", "init", path); err == nil {
		t.Fatal("expected error for existing file")
	}
}

func TestConfigShowPrintsEffectiveConfig(t *testing.T) {
	out, err := execute(t, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "[squat]") {
		t.Fatalf("expected TOML sections in output, got %q", out)
	}
}

func TestRunRequiresInput(t *testing.T) {
	if _, err := execute(t, "run"); err == nil {
		t.Fatal("expected error without --input")
	}
}

func TestInspectRequiresDB(t *testing.T) {
	if _, err := execute(t, "inspect", "sessions"); err == nil {
		t.Fatal("expected error without --db")
	}
}
