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

// Package log is the engine-wide structured logger: leveled key/value
// helpers over a logrus backend with optional rotated file output.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/helioschain/helios/conf"
)

var (
	root   = logrus.New()
	initMu sync.Mutex
)

func init() {
	root.SetOutput(os.Stderr)
	root.SetLevel(logrus.InfoLevel)
	root.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000",
	})
}

// Init reconfigures the root logger from config. Safe to call more than
// once; the last call wins.
func Init(cfg conf.LoggerConfig) {
	initMu.Lock()
	defer initMu.Unlock()

	lvl, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	root.SetLevel(lvl)

	if cfg.LogFile == "" {
		root.SetOutput(os.Stderr)
		return
	}
	rotated := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
	root.SetOutput(io.MultiWriter(os.Stderr, rotated))
}

// fields converts the alternating key/value context convention into logrus
// fields. An odd trailing key is kept with a nil value rather than dropped.
func fields(ctx []interface{}) logrus.Fields {
	f := make(logrus.Fields, len(ctx)/2+1)
	for i := 0; i < len(ctx); i += 2 {
		key, ok := ctx[i].(string)
		if !ok {
			key = fmt.Sprint(ctx[i])
		}
		if i+1 < len(ctx) {
			f[key] = ctx[i+1]
		} else {
			f[key] = nil
		}
	}
	return f
}

// Trace logs at trace level with alternating key/value context.
func Trace(msg string, ctx ...interface{}) { root.WithFields(fields(ctx)).Trace(msg) }

// Debug logs at debug level with alternating key/value context.
func Debug(msg string, ctx ...interface{}) { root.WithFields(fields(ctx)).Debug(msg) }

// Info logs at info level with alternating key/value context.
func Info(msg string, ctx ...interface{}) { root.WithFields(fields(ctx)).Info(msg) }

// Warn logs at warn level with alternating key/value context.
func Warn(msg string, ctx ...interface{}) { root.WithFields(fields(ctx)).Warn(msg) }

// Error logs at error level with alternating key/value context.
func Error(msg string, ctx ...interface{}) { root.WithFields(fields(ctx)).Error(msg) }

// Crit logs at fatal level and exits.
func Crit(msg string, ctx ...interface{}) { root.WithFields(fields(ctx)).Fatal(msg) }
