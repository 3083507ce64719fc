package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	if logger == nil {
		t.Fatal("newLogger() returned nil")
	}

	// Test that it can log
	logger.Info("test message")

	if buf.Len() == 0 {
		t.Error("logger should have written output")
	}
}

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFn   func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("msg") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("msg") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("msg") }, true},
		{"error at info level", log.InfoLevel, func(l *log.Logger) { l.Error("msg") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)
			tt.logFn(logger)

			got := buf.Len() > 0
			if got != tt.wantLog {
				t.Errorf("logged = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestTimerDone(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	tm := newTimer(logger)
	tm.done("Sequenced 4 steps")

	out := buf.String()
	if !strings.Contains(out, "Sequenced 4 steps") {
		t.Errorf("timer output = %q, should contain the message", out)
	}
	// Elapsed duration is appended in parentheses
	if !strings.Contains(out, "(") || !strings.Contains(out, ")") {
		t.Errorf("timer output = %q, should contain an elapsed duration", out)
	}
}
