package rate

import "errors"

var (
	// ErrRateLimited is returned when a client key exhausted its issue budget.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps transport failures against the counting backend.
	ErrRedisUnavailable = errors.New("redis unavailable")
)
