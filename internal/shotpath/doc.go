// Package shotpath derives shot names and versioned output paths for render
// jobs.
//
// Resolve is deterministic for a given job, output root and filesystem
// snapshot. It probes existing versions from the highest down so a new render
// never lands on top of a previous one unless the job asks to overwrite or the
// caller is replaying the latest result.
package shotpath
