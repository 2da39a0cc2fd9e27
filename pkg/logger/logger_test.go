package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/wonny/swingscan/pkg/config"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse log output %q: %v", buf.String(), err)
	}
	return entry
}

func TestNew(t *testing.T) {
	cfg := &config.Config{Env: "test", LogLevel: "debug", LogFormat: "json"}
	if New(cfg) == nil {
		t.Fatal("Expected logger to be created")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"invalid", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLogLevel(tt.input); got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLoggerMethods(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "debug")

	tests := []struct {
		name      string
		logFunc   func()
		wantMsg   string
		wantLevel string
	}{
		{"debug", func() { log.Debug("debug message") }, "debug message", "debug"},
		{"info", func() { log.Info("info message") }, "info message", "info"},
		{"warn", func() { log.Warn("warn message") }, "warn message", "warn"},
		{"error", func() { log.Error("error message") }, "error message", "error"},
		{"infof", func() { log.Infof("scanned %d of %d", 3, 16) }, "scanned 3 of 16", "info"},
		{"warnf", func() { log.Warnf("symbol %s skipped", "2330.TW") }, "symbol 2330.TW skipped", "warn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.logFunc()

			entry := decode(t, &buf)
			if entry["level"] != tt.wantLevel {
				t.Errorf("Expected level %q, got %q", tt.wantLevel, entry["level"])
			}
			if entry["message"] != tt.wantMsg {
				t.Errorf("Expected message %q, got %q", tt.wantMsg, entry["message"])
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn")

	log.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("Expected info to be filtered at warn level, got %q", buf.String())
	}

	log.Warn("kept")
	if buf.Len() == 0 {
		t.Error("Expected warn to be written")
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info")

	log.WithFields(map[string]interface{}{
		"symbol": "2330.TW",
		"bars":   250,
	}).WithError(errors.New("boom")).Info("scored")

	entry := decode(t, &buf)
	if entry["symbol"] != "2330.TW" {
		t.Errorf("Expected symbol field, got %v", entry["symbol"])
	}
	if entry["bars"] != float64(250) {
		t.Errorf("Expected bars=250, got %v", entry["bars"])
	}
	if entry["error"] != "boom" {
		t.Errorf("Expected error field, got %v", entry["error"])
	}
}

func TestNewNop(t *testing.T) {
	log := NewNop()
	log.WithField("k", "v").Error("nothing happens")
}
