// Copyright 2024-2026 The helios Authors
// This file is part of the helios library.
//
// The helios library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The helios library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the helios library. If not, see <http://www.gnu.org/licenses/>.

package conf

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// EngineConfig tunes the execution engine. Zero values select the built-in
// defaults; consensus-relevant behavior is never configurable here.
type EngineConfig struct {
	// StepLimit caps opcode iterations per frame. 0 means the built-in cap.
	StepLimit uint64 `json:"step_limit" yaml:"step_limit"`

	// TraceEnabled turns on the struct logger for every execution.
	TraceEnabled bool `json:"trace_enabled" yaml:"trace_enabled"`

	// TraceMemory includes memory snapshots in trace records.
	TraceMemory bool `json:"trace_memory" yaml:"trace_memory"`

	// TraceStack includes stack copies in trace records.
	TraceStack bool `json:"trace_stack" yaml:"trace_stack"`

	Logger LoggerConfig `json:"logger" yaml:"logger"`
}

// DefaultEngineConfig returns the defaults used when no file is supplied.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		TraceStack: true,
		Logger:     DefaultLoggerConfig(),
	}
}

// LoadEngineConfig reads a yaml config file, filling unset fields with
// defaults.
func LoadEngineConfig(path string) (EngineConfig, error) {
	cfg := DefaultEngineConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "read engine config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse engine config %s", path)
	}
	return cfg, nil
}
