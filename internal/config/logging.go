package config

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// SetupLogger builds the process logger: human-readable text on stderr at
// the requested level, and JSON records in the log file at debug so the
// file keeps full detail even when the console is quiet. The returned
// cleanup closes the file.
func SetupLogger(logFile string, level slog.Level) (*slog.Logger, func() error) {
	console := consoleHandler(os.Stderr, level)

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		logger := slog.New(console)
		logger.Warn("log file unavailable, logging to stderr only", "file", logFile, "error", err)
		return logger, func() error { return nil }
	}

	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})

	logger := slog.New(slogmulti.Fanout(console, fileHandler))
	return logger, file.Close
}

// SetupLoggerWithWriters builds the same fanout over custom writers, for
// tests that assert on log output.
func SetupLoggerWithWriters(stderr, file io.Writer, level slog.Level) *slog.Logger {
	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(slogmulti.Fanout(consoleHandler(stderr, level), fileHandler))
}

// consoleHandler is a text handler without timestamps. The console output
// sits next to command output, where timestamps are noise; the JSON file
// keeps them.
func consoleHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})
}
