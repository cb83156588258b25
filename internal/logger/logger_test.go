package logger

import (
	"errors"
	"testing"
)

func TestNewBuildsEveryLevelAndFormat(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "unknown"} {
		for _, format := range []string{"json", "console"} {
			log := New(level, format)
			if log == nil {
				t.Fatalf("New(%q, %q) returned nil", level, format)
			}
		}
	}
}

func TestWrapperSurface(t *testing.T) {
	log := NewTestLogger(t).WithFields(map[string]interface{}{"component": "logger_test"})
	log.Debug("debug line", nil)
	log.Info("info line", map[string]interface{}{"k": "v"})
	log.Warn("warn line", nil)
	log.WithError(errors.New("boom")).Error("error line", nil)
}
