// Copyright 2026 The fscheck Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logger provides the five-severity (TRACE/DEBUG/INFO/WARNING/
// ERROR) logging surface the engine and CLI log through — text
// or JSON, optionally rotated to a file via lumberjack. Adapted from the
// teacher's slog-plus-custom-handler logger (only its test files survived
// retrieval; this file rebuilds the implementation those tests describe,
// generalized off of the severity/format contract they exercise).
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Severity names, matching the five levels spec.md's ambient logging
// section borrows from the teacher's cfg.LoggingConfig.Severity vocabulary.
const (
	TRACE   = "TRACE"
	DEBUG   = "DEBUG"
	INFO    = "INFO"
	WARNING = "WARNING"
	ERROR   = "ERROR"
	OFF     = "OFF"
)

// slog has no native TRACE level; it's modelled one step below Debug, the
// same offset the teacher's logger uses.
const (
	LevelTrace = slog.Level(-8)
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
	LevelOff   = slog.Level(16) // above Error; nothing logs at this level
)

var levelNames = map[slog.Level]string{
	LevelTrace: TRACE,
	LevelDebug: DEBUG,
	LevelInfo:  INFO,
	LevelWarn:  WARNING,
	LevelError: ERROR,
}

// LogRotateConfig mirrors the lumberjack knobs SPEC_FULL.md §A.2 exposes
// through configuration.
type LogRotateConfig struct {
	MaxFileSizeMB  int
	BackupFileCount int
	Compress        bool
}

// DefaultLogRotateConfig matches the teacher's defaults.go values for
// rotated log files.
func DefaultLogRotateConfig() LogRotateConfig {
	return LogRotateConfig{MaxFileSizeMB: 512, BackupFileCount: 10, Compress: false}
}

type loggerFactory struct {
	file            *os.File
	sysWriter       io.Writer
	format          string // "text" or "json"
	level           string
	logRotateConfig LogRotateConfig
}

func (f *loggerFactory) writer() io.Writer {
	if f.file != nil {
		rotated := &lumberjack.Logger{
			Filename:   f.file.Name(),
			MaxSize:    f.logRotateConfig.MaxFileSizeMB,
			MaxBackups: f.logRotateConfig.BackupFileCount,
			Compress:   f.logRotateConfig.Compress,
		}
		// The engine can emit one log line per trial across many
		// concurrent workers (§4.9); route rotated-file output through
		// AsyncLogger so a slow rotation/compress cycle never stalls a
		// trial goroutine.
		return NewAsyncLogger(rotated, 4096)
	}
	if f.sysWriter != nil {
		return f.sysWriter
	}
	return os.Stderr
}

func (f *loggerFactory) createJsonOrTextHandler(w io.Writer, programLevel *slog.LevelVar, prefix string) slog.Handler {
	replace := func(groups []string, a slog.Attr) slog.Attr {
		switch a.Key {
		case slog.LevelKey:
			level, _ := a.Value.Any().(slog.Level)
			a.Key = "severity"
			a.Value = slog.StringValue(severityName(level))
		case slog.MessageKey:
			a.Value = slog.StringValue(prefix + a.Value.String())
		case slog.TimeKey:
			if f.format != "json" {
				a.Value = slog.StringValue(a.Value.Time().Format("2006/01/02 15:04:05.000000"))
			}
		}
		return a
	}

	opts := &slog.HandlerOptions{Level: programLevel, ReplaceAttr: replace}
	if f.format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func severityName(level slog.Level) string {
	if name, ok := levelNames[level]; ok {
		return name
	}
	return level.String()
}

var (
	defaultLoggerFactory = &loggerFactory{level: INFO, logRotateConfig: DefaultLogRotateConfig()}
	defaultLogger         = newDefaultLogger()
)

func newDefaultLogger() *slog.Logger {
	var programLevel slog.LevelVar
	setLoggingLevel(defaultLoggerFactory.level, &programLevel)
	return slog.New(defaultLoggerFactory.createJsonOrTextHandler(defaultLoggerFactory.writer(), &programLevel, ""))
}

func setLoggingLevel(level string, programLevel *slog.LevelVar) {
	switch level {
	case TRACE:
		programLevel.Set(LevelTrace)
	case DEBUG:
		programLevel.Set(LevelDebug)
	case INFO:
		programLevel.Set(LevelInfo)
	case WARNING:
		programLevel.Set(LevelWarn)
	case ERROR:
		programLevel.Set(LevelError)
	case OFF:
		programLevel.Set(LevelOff)
	default:
		programLevel.Set(LevelInfo)
	}
}

// SetLogFormat switches the default logger between "text" and "json" (any
// other value, including empty, behaves as "text": only "json" selects the
// JSON handler).
func SetLogFormat(format string) {
	defaultLoggerFactory.format = format
	var programLevel slog.LevelVar
	setLoggingLevel(defaultLoggerFactory.level, &programLevel)
	defaultLogger = slog.New(defaultLoggerFactory.createJsonOrTextHandler(defaultLoggerFactory.writer(), &programLevel, ""))
}

// InitLogFile points the default logger at a rotated file using lumberjack,
// per SPEC_FULL.md §A.2.
func InitLogFile(path string, severity string, format string, rotate LogRotateConfig) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("logger: opening %s: %w", path, err)
	}

	defaultLoggerFactory = &loggerFactory{
		file:            f,
		level:           severity,
		format:          format,
		logRotateConfig: rotate,
	}
	var programLevel slog.LevelVar
	setLoggingLevel(severity, &programLevel)
	defaultLogger = slog.New(defaultLoggerFactory.createJsonOrTextHandler(defaultLoggerFactory.writer(), &programLevel, ""))
	return nil
}

// Slog returns the current default *slog.Logger, for packages (like
// internal/engine) that take a logger by injection rather than calling
// the package-level Tracef/Debugf/... helpers directly.
func Slog() *slog.Logger { return defaultLogger }

// Tracef, Debugf, Infof, Warnf, and Errorf log a formatted message at their
// named severity through the default logger.
func Tracef(format string, args ...any) { defaultLogger.Log(context.Background(), LevelTrace, fmt.Sprintf(format, args...)) }
func Debugf(format string, args ...any) { defaultLogger.Debug(fmt.Sprintf(format, args...)) }
func Infof(format string, args ...any)  { defaultLogger.Info(fmt.Sprintf(format, args...)) }
func Warnf(format string, args ...any)  { defaultLogger.Warn(fmt.Sprintf(format, args...)) }
func Errorf(format string, args ...any) { defaultLogger.Error(fmt.Sprintf(format, args...)) }
