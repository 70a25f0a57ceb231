package log

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevelAliases(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		"WARN":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		" error ": zapcore.ErrorLevel,
	}
	for input, want := range cases {
		got, err := parseLevel(input)
		if err != nil {
			t.Fatalf("parseLevel(%q): %v", input, err)
		}
		if got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	if _, err := NewLogger("verbose"); err == nil {
		t.Fatal("expected an error for an unrecognized level")
	}
}

func TestNewLoggerBuilds(t *testing.T) {
	logger, err := NewLogger("info")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Debug("suppressed at info level")
}
