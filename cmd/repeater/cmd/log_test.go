package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/go-drift/repeater/pkg/config"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("test") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("test") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("test") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestContextFallbacks(t *testing.T) {
	ctx := context.Background()
	if loggerFromContext(ctx) != log.Default() {
		t.Error("expected the default logger")
	}
	if got := configFromContext(ctx); got.CacheLength() != config.DefaultCacheLength {
		t.Errorf("default cache length = %v", got.CacheLength())
	}

	logger := log.New(&bytes.Buffer{})
	cfg := config.Default()
	ctx = withConfig(withLogger(ctx, logger), cfg)
	if loggerFromContext(ctx) != logger || configFromContext(ctx) != cfg {
		t.Error("context values not returned")
	}
}
