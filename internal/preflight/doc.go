// Package preflight provides readiness checks for the renderer executable,
// the configured directories and the jobs of a session.
//
// These checks run in two contexts:
//   - "renderrob render" runs RunAll before starting a session and prints
//     every failure. The controller still decides per job; preflight never
//     blocks a session on its own.
//   - "renderrob jobs check" runs the same checks and exits non-zero when a
//     blocking check fails.
//
// Advisory results (duplicate jobs, a missing settings module) are reported
// but never count as failures.
package preflight
