// Copyright 2024-2026 The helios Authors
// This file is part of the helios library.

package log

import (
	"testing"

	"github.com/helioschain/helios/conf"
)

func TestFieldsPairing(t *testing.T) {
	f := fields([]interface{}{"a", 1, "b", "two"})
	if f["a"] != 1 || f["b"] != "two" {
		t.Errorf("fields = %v", f)
	}
	t.Logf("✓ alternating context converts to fields")
}

func TestFieldsOddTrailingKey(t *testing.T) {
	f := fields([]interface{}{"a", 1, "dangling"})
	if _, ok := f["dangling"]; !ok {
		t.Error("trailing key should be kept")
	}
	t.Logf("✓ odd context keeps the trailing key")
}

func TestFieldsNonStringKey(t *testing.T) {
	f := fields([]interface{}{42, "v"})
	if f["42"] != "v" {
		t.Errorf("fields = %v", f)
	}
	t.Logf("✓ non-string keys stringify")
}

func TestInitDoesNotPanic(t *testing.T) {
	Init(conf.LoggerConfig{Level: "debug"})
	Debug("test message", "k", "v")
	Init(conf.LoggerConfig{Level: "not-a-level"})
	Info("still works")
	t.Logf("✓ Init tolerates bad levels and reconfiguration")
}
