// Package obslog sets the process-wide zerolog logger and level, and hands
// out component-tagged child loggers, rather than threading a logger
// through every call site.
package obslog

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup parses level (case-insensitive; "debug", "info", "warn", "error",
// defaulting to info for anything else) and installs it as the global
// zerolog level, returning a logger writing structured JSON to stdout.
func Setup(level string) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(level))
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Component returns a child logger tagged with a "component" field, the
// way each package (compiler, steps, substrate adapters) identifies its
// own log lines. The child copies the global logger as it is at call time:
// one built before Setup runs (such as a package-level var) keeps
// zerolog's default output, and only the global level set by Setup
// applies to it.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
