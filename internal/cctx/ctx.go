package cctx

import "context"

type ContextKey string

var (
	UserID    ContextKey = "rb:uid"
	RequestID ContextKey = "rb:rid"
)

// UserIDFrom returns the authenticated principal, if any.
func UserIDFrom(ctx context.Context) (id int64, ok bool) {
	id, ok = ctx.Value(UserID).(int64)
	return
}

func RequestIDFrom(ctx context.Context) string {
	rid, _ := ctx.Value(RequestID).(string)
	return rid
}
