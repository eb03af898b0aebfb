// Package log provides slog handler utilities for clinicscan.
//
// The crawler and evidence builder log page text and evidence payloads at
// debug level. Those values can be tens of kilobytes; TruncateHandler
// wraps any slog.Handler and shortens oversized string attributes so
// verbose output stays readable without components having to trim their
// own log values.
package log
