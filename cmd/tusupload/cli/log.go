package cli

import (
	"log"
	"os"

	"golang.org/x/exp/slog"
)

var stdout = log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds)
var stderr = log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds)

// SetupStructuredLogger installs the default slog logger used by the handler
// and all stores, according to -log-format and -verbose.
func SetupStructuredLogger() {
	level := slog.LevelInfo
	if Flags.VerboseOutput {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if Flags.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	slog.SetDefault(slog.New(handler))
}

func printStartupLog(msg string, args ...interface{}) {
	if Flags.ShowStartupLogs {
		stdout.Printf(msg, args...)
	}
}
