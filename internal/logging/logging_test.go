package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Fatalf("parseLevel(%q) = %s, want %s", input, got, want)
		}
	}
}

func TestMaskEmail(t *testing.T) {
	if got := MaskEmail("ana@example.com"); got != "a***@example.com" {
		t.Fatalf("unexpected mask %q", got)
	}
	if got := MaskEmail("nope"); got != "***" {
		t.Fatalf("unexpected mask %q", got)
	}
}

func TestNewBuildsBothModes(t *testing.T) {
	for _, local := range []bool{true, false} {
		logger, err := New(local, "debug")
		if err != nil {
			t.Fatalf("New(local=%v) failed: %v", local, err)
		}
		if !logger.Core().Enabled(zapcore.DebugLevel) {
			t.Fatalf("expected debug level enabled")
		}
	}
	if err := Sync(nil); err != nil {
		t.Fatalf("expected nil logger sync to succeed")
	}
}
