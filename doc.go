// Package goCaptcha provides an audio CAPTCHA challenge engine: it issues audio
// clips masked with adversarial broadband noise and verifies free-text answers
// against the expected transcript using embedding cosine similarity.
//
// The package is designed for concurrent server workloads: Engine methods are safe
// to call from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// goCaptcha is the public surface. It exposes [Engine], [Builder], [Config], the
// collaborator interfaces ([Synthesizer], [SoundLibrary], [Embedder],
// [WordCorpus]), and value types (IssueResult, VerifyResult, MetricsSnapshot).
// All internal coordination — audio mixing, text folding, issue throttling —
// lives under internal/ and is never exported.
//
// # What this package must NOT do
//
//   - Expose Redis clients, the session map, or audio encoding details in its
//     public API.
//   - Perform outbound I/O outside of Engine methods (construction via Builder is
//     allocation-only until Build).
//   - Surface sound-library failures to callers: that branch terminates in the
//     synthetic-noise fallback, never in an error.
//
// # Performance contract
//
// Session map access holds one mutex for lookup+mutate only; embedding,
// synthesis, and clip fetches always happen outside the lock so slow
// collaborators cannot serialize sibling requests.
package goCaptcha
