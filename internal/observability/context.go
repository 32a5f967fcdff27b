package observability

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	requestIDCtxKey contextKey = "request_id"
	userIDCtxKey    contextKey = "user_id"
)

// Log attribute names.
const (
	RequestIDKey = "request_id"
	UserIDKey    = "user_id"
)

// WithRequestID stores a request id, generating one when id is empty.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	return context.WithValue(ctx, requestIDCtxKey, id)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(requestIDCtxKey).(string); ok {
		return id
	}
	return ""
}

// WithUserID records the authenticated profile for log records.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDCtxKey, userID)
}

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(userIDCtxKey).(string); ok {
		return id
	}
	return ""
}
