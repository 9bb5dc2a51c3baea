// Package middleware exposes HTTP middleware adapters for pass-token
// enforcement built on top of goCaptcha.Engine validation.
//
// # Guards
//
//   - [RequirePassToken] — offline pass-token verification, no store call.
//
// The guard reads the Authorization header, calls Engine.ValidatePass, and
// injects validated claims into the request context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement verification logic itself — all decisions are delegated to
// Engine.ValidatePass.
//
// # What this package must NOT do
//
//   - Parse or create pass tokens directly (delegates to Engine).
//   - Touch the challenge session store.
//   - Make authorization decisions beyond pass/reject from Engine.ValidatePass.
package middleware
