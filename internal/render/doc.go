// Package render runs render sessions: an ordered queue of jobs executed one
// Blender process at a time.
//
// A Controller snapshots the job list, resolves each active job's output path,
// launches the renderer and classifies its exit code into a colored outcome.
// The loop is driven by process output, process exit, Cancel requests and
// context cancellation, all consumed from a single goroutine. Progress and
// outcome snapshots are safe to read from other goroutines while a session
// is in flight.
package render
