package service

import (
	"io"
	"log/slog"
)

// testLogger returns a logger that discards output; service tests assert on
// behavior, not log lines.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
