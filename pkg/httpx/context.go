package httpx

import "context"

type ctxKey string

// Context keys populated by the authentication middleware.
const (
	CtxKeyUserID    ctxKey = "user_id"
	CtxKeySessionID ctxKey = "session_id"
	CtxKeyDeviceID  ctxKey = "device_id"
)

// UserIDFromContext returns the authenticated user id, or "" before
// authentication ran.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUserID).(string); ok {
		return v
	}
	return ""
}

// SessionIDFromContext returns the validated session id for the request.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeySessionID).(string); ok {
		return v
	}
	return ""
}
