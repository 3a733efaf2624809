// Package logging assembles structured slog loggers and formatting helpers used
// across RenderRob.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so the render controller can tag
// log lines with session IDs and job identity keys. Per-session log files are
// attached with Tee, and CleanupOldLogs prunes them according to the
// configured retention.
package logging
