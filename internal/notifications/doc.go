// Package notifications publishes render session events to ntfy.
//
// NewService returns a no-op implementation when no topic is configured, so
// callers never branch on whether notifications are enabled. Reporter adapts
// a Service to render.Reporter and sends in the background so a slow ntfy
// server never stalls the render queue.
package notifications
