package httpserver

import "context"

type ctxKey string

const userIDKey ctxKey = "lk.userID"

// WithUserID stores the authenticated caller identity in context.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromCtx fetches the caller identity from context.
func UserIDFromCtx(ctx context.Context) (string, bool) {
	v := ctx.Value(userIDKey)
	if v == nil {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}
