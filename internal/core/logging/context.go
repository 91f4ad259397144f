package logging

import "context"

type contextKey string

const (
	operationKey contextKey = "op"
	sequenceKey  contextKey = "seq"
)

// WithOperation names the orchestrator operation running under ctx.
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, operationKey, op)
}

// WithSequence attaches the request token issued to the operation.
func WithSequence(ctx context.Context, seq uint64) context.Context {
	return context.WithValue(ctx, sequenceKey, seq)
}

// GetOperation retrieves the operation name from the context.
// Returns empty string if not present.
func GetOperation(ctx context.Context) string {
	if op, ok := ctx.Value(operationKey).(string); ok {
		return op
	}
	return ""
}

// GetSequence retrieves the request token from the context.
// Returns 0 if not present.
func GetSequence(ctx context.Context) uint64 {
	if seq, ok := ctx.Value(sequenceKey).(uint64); ok {
		return seq
	}
	return 0
}
