// Package logging provides the client log. Output goes to a file under the
// user config dir, never to stdout/stderr: the TUI owns the terminal and a
// stray log line would corrupt the rendered frame.
package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Open builds a JSON file logger at logPath, creating parent directories as
// needed. Logging must never take the app down: on any setup failure the nop
// logger is returned instead of an error.
func Open(logPath string, debug bool) *zap.Logger {
	if logPath == "" {
		return zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return zap.NewNop()
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zap.NewNop()
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), level)
	return zap.New(core)
}
