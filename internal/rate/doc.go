// Package rate implements the Redis-backed fixed-window issue throttle
// consulted before any challenge is generated.
package rate
