// Package services defines shared utilities consumed by the render controller,
// the Blender integration, and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp session IDs, job identity keys, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that keep failure
//     messages uniform and let the CLI attach an operator hint.
//
// External tool integrations live in subpackages (see services/blender).
package services
