package services

import "context"

type contextKey string

const (
	sessionIDKey contextKey = "session_id"
	jobKeyKey    contextKey = "job_key"
	jobIndexKey  contextKey = "job_index"
	requestIDKey contextKey = "request_id"
)

// WithSessionID annotates context with the render session identifier.
func WithSessionID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionIDKey, id)
}

// SessionIDFromContext returns the render session identifier if present.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(sessionIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithJob annotates context with the identity key and queue position of a job.
func WithJob(ctx context.Context, key string, index int) context.Context {
	if key != "" {
		ctx = context.WithValue(ctx, jobKeyKey, key)
	}
	return context.WithValue(ctx, jobIndexKey, index)
}

// JobKeyFromContext returns the job identity key if present.
func JobKeyFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(jobKeyKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// JobIndexFromContext returns the job's position in the session snapshot.
func JobIndexFromContext(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(jobIndexKey).(int)
	return v, ok
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
