// Package logger configures the application's structured logging and
// provides helpers for carrying a request-scoped logger through a
// context.Context.
//
// The application logs JSON records via log/slog. Setup installs the
// configured logger as the process default; WithLogger/FromContext let
// middleware attach per-request attributes (such as trace IDs) that lower
// layers pick up without threading a logger through every call site.
package logger
