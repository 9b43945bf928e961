// Copyright 2024-2026 The helios Authors
// This file is part of the helios library.

package conf

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultEngineConfig(t *testing.T) {
	cfg := DefaultEngineConfig()
	if cfg.StepLimit != 0 {
		t.Error("default step limit should defer to the built-in cap")
	}
	if !cfg.TraceStack {
		t.Error("stack capture should default on")
	}
	if cfg.Logger.Level != "info" {
		t.Errorf("default log level = %q", cfg.Logger.Level)
	}
	t.Logf("✓ defaults are sensible")
}

func TestLoadEngineConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	data := []byte("step_limit: 500000\ntrace_enabled: true\nlogger:\n  level: debug\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadEngineConfig(path)
	if err != nil {
		t.Fatalf("LoadEngineConfig: %v", err)
	}
	if cfg.StepLimit != 500000 {
		t.Errorf("StepLimit = %d", cfg.StepLimit)
	}
	if !cfg.TraceEnabled {
		t.Error("TraceEnabled should parse")
	}
	if cfg.Logger.Level != "debug" {
		t.Errorf("Logger.Level = %q", cfg.Logger.Level)
	}
	t.Logf("✓ yaml config loads over defaults")
}

func TestLoadEngineConfigMissingFile(t *testing.T) {
	_, err := LoadEngineConfig("/definitely/not/there.yaml")
	if err == nil {
		t.Error("missing file should error")
	}
	t.Logf("✓ missing file errors with context")
}
