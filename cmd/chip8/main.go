package main

import (
	"runtime"

	"github.com/retroenv/retrogolib/log"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	config := parseArgs()
	logger := newLogger(config.Debug)

	if err := NewApp(config, logger).Run(); err != nil {
		logger.Fatal("run failed", log.Err(err))
	}
}

// newLogger creates a logger with appropriate settings.
func newLogger(debug bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	}
	return log.NewWithConfig(cfg)
}
