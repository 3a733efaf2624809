// Package logs reads the per-session JSON logs written by render sessions.
//
// Tail returns the last lines of a log, or the lines appended after an
// offset, and can poll for new lines so `renderrob logs --follow` can watch a
// session that is still rendering. ParseEntry decodes one JSON line for
// display.
package logs
