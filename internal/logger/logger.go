package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process-wide logger. It discards everything until Init is called.
var Log = zap.NewNop()

// Init installs a development logger. GOPHER_LOG_LEVEL overrides the default info level.
func Init() {
	level := zapcore.InfoLevel
	if env := strings.TrimSpace(os.Getenv("GOPHER_LOG_LEVEL")); env != "" {
		if err := level.UnmarshalText([]byte(env)); err != nil {
			level = zapcore.InfoLevel
		}
	}
	InitWithLevel(level)
}

func InitWithLevel(level zapcore.Level) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = true
	l, err := cfg.Build()
	if err != nil {
		// Keep whatever logger we had
		return
	}
	Log = l
}

// ParseLevel maps a flag value such as "debug" to a zap level.
func ParseLevel(s string) (zapcore.Level, error) {
	var level zapcore.Level
	err := level.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(s))))
	return level, err
}

func Sync() {
	_ = Log.Sync()
}
