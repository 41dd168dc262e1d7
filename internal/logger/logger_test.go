package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureOutput(t *testing.T, level string, format OutputFormat, fn func()) string {
	t.Helper()
	buf := &bytes.Buffer{}
	SetTestOutput(buf)
	defer UnsetTestOutput()

	// Reinitialize logger with test output
	InitLogger(level, format)

	fn()

	return buf.String()
}

func TestLogger(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		logFn    func()
		contains []string
		excludes []string
	}{
		{
			name:  "info log",
			level: "info",
			logFn: func() {
				Info("test info message")
			},
			contains: []string{"test info message"},
		},
		{
			name:  "debug log with debug level",
			level: "debug",
			logFn: func() {
				Debug("test debug message")
			},
			contains: []string{"test debug message", "level=DEBUG"},
		},
		{
			name:  "debug log with info level",
			level: "info",
			logFn: func() {
				Debug("test debug message")
			},
			excludes: []string{"test debug message"},
		},
		{
			name:  "error log",
			level: "error",
			logFn: func() {
				Error("test error message")
			},
			contains: []string{"test error message", "level=ERROR"},
		},
		{
			name:  "warn log with fields",
			level: "warn",
			logFn: func() {
				Warn("test warning", Fields{"handle": "owner/model", "attempt": 2})
			},
			contains: []string{"test warning", "level=WARN", "handle=owner/model", "attempt=2"},
		},
		{
			name:  "formatted info log",
			level: "info",
			logFn: func() {
				Infof("resuming %s at byte %d", "file.bin", 1024)
			},
			contains: []string{"resuming file.bin at byte 1024"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := captureOutput(t, tt.level, FormatText, tt.logFn)
			for _, want := range tt.contains {
				assert.Contains(t, output, want, "log output should contain expected message")
			}
			for _, notWant := range tt.excludes {
				assert.NotContains(t, output, notWant, "log output should not contain excluded message")
			}
		})
	}
}

func TestGetLogger_InitializesIfNil(t *testing.T) {
	mu.Lock()
	logger = nil
	mu.Unlock()
	assert.NotPanics(t, func() {
		lg := GetLogger()
		assert.NotNil(t, lg)
	})
}

func TestSetOutputFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	SetTestOutput(buf)
	defer UnsetTestOutput()

	InitLogger("debug", FormatText)
	Info("test message 1")
	output := buf.String()
	assert.Contains(t, output, "test message 1")
	assert.Contains(t, output, "INFO")

	buf.Reset()
	SetOutputFormat(FormatJSON)
	Info("test message 2")
	jsonOutput := buf.String()
	assert.Contains(t, jsonOutput, `"msg":"test message 2"`)
	assert.Contains(t, jsonOutput, `"level":"INFO"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}
