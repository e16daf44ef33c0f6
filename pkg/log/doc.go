// Package log builds [log/slog] handlers from command line settings.
//
// Text and logfmt output are rendered with charmbracelet/log, JSON output uses
// the standard [slog.JSONHandler]. Records can additionally be shipped to a
// Seq server with [WithSeq].
package log
