package logging

import "context"

type contextKey string

const (
	sentSessionIDKey contextKey = "sent_session_id"
	listKey          contextKey = "list"
)

// WithSentSessionID adds the id of the apply run being recorded to the context.
func WithSentSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sentSessionIDKey, id)
}

// WithList adds a staple list name to the context.
func WithList(ctx context.Context, list string) context.Context {
	return context.WithValue(ctx, listKey, list)
}

// GetSentSessionID retrieves the sent session ID from the context.
// Returns empty string if not present.
func GetSentSessionID(ctx context.Context) string {
	if id, ok := ctx.Value(sentSessionIDKey).(string); ok {
		return id
	}
	return ""
}

// GetList retrieves the staple list name from the context.
// Returns empty string if not present.
func GetList(ctx context.Context) string {
	if name, ok := ctx.Value(listKey).(string); ok {
		return name
	}
	return ""
}
