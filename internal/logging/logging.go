// Package logging owns the process-wide structured logger.
//
// The logger is zap-backed with a console encoder writing to stderr so that
// report output on stdout stays machine-parseable. Components log fail-open
// events here (retrieval disabled, chunk skipped, comment rejected) instead
// of failing the run.
package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.Mutex
	logger = zap.NewNop().Sugar()
)

// Init configures the global logger. Debug level when verbose is true.
func Init(verbose bool) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.OutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		return
	}
	mu.Lock()
	logger = l.Sugar()
	mu.Unlock()
}

// L returns the current global logger.
func L() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// Sync flushes buffered log entries. Safe to call on exit.
func Sync() {
	_ = L().Sync()
}
