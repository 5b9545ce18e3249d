package services

import "context"

type contextKey string

const (
	jobKey       contextKey = "job"
	listKey      contextKey = "list"
	requestIDKey contextKey = "request_id"
)

// WithJob annotates context with the running command name.
func WithJob(ctx context.Context, job string) context.Context {
	if job == "" {
		return ctx
	}
	return context.WithValue(ctx, jobKey, job)
}

// JobFromContext returns the command name if present.
func JobFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(jobKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithList annotates context with the configured list or collection being processed.
func WithList(ctx context.Context, list string) context.Context {
	if list == "" {
		return ctx
	}
	return context.WithValue(ctx, listKey, list)
}

// ListFromContext returns the list name if present.
func ListFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(listKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
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
