package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":  zapcore.DebugLevel,
		" INFO ": zapcore.InfoLevel,
		"warn":   zapcore.WarnLevel,
		"error":  zapcore.ErrorLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Errorf("ParseLevel(%q) failed: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("Expected an error for an unknown level")
	}
}

func TestInitWithLevelReplacesNop(t *testing.T) {
	previous := Log
	t.Cleanup(func() { Log = previous })

	Log = zaptest.NewLogger(t)
	InitWithLevel(zapcore.WarnLevel)
	if Log.Core().Enabled(zapcore.InfoLevel) {
		t.Error("Info should be disabled at warn level")
	}
	if !Log.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("Error should be enabled at warn level")
	}
}
