package goCaptcha

import "context"

type clientKeyContextKey struct{}

// WithClientKey attaches the caller's throttle key (normally the client IP) to
// ctx. The Engine uses it for per-client issue rate limiting and audit
// attribution. Without a key the issue throttle is skipped.
func WithClientKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, clientKeyContextKey{}, key)
}

func clientKeyFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	key, _ := ctx.Value(clientKeyContextKey{}).(string)
	return key
}
