// Package history records render sessions and per-job outcomes in SQLite.
//
// Store owns the database under the configured state directory. Recorder
// adapts a Store to the render controller's Reporter interface so every
// session the CLI runs is persisted as it progresses.
package history
