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

// Package conf holds the yaml-backed configuration structs of the engine.
package conf

// LoggerConfig controls the log sink.
//
// Rotation policy: a file is cut when it exceeds MaxSize MB; files beyond
// MaxBackups or older than MaxAge days are removed; Compress gzips rotated
// files.
type LoggerConfig struct {
	// LogFile is the log file name. Empty means console only.
	LogFile string `json:"name" yaml:"name"`

	// Level is one of: trace, debug, info, warn, error, fatal.
	Level string `json:"level" yaml:"level"`

	// MaxSize is the maximum size of a single log file in MB.
	MaxSize int `json:"max_size" yaml:"max_size"`

	// MaxBackups is the number of rotated files to keep. 0 keeps all.
	MaxBackups int `json:"max_count" yaml:"max_count"`

	// MaxAge is the number of days to retain rotated files. 0 keeps all.
	MaxAge int `json:"max_day" yaml:"max_day"`

	// Compress gzips rotated files.
	Compress bool `json:"compress" yaml:"compress"`
}

// DefaultLoggerConfig is console-only at info level.
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:      "info",
		MaxSize:    100,
		MaxBackups: 10,
		MaxAge:     30,
		Compress:   true,
	}
}
