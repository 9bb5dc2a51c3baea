package goCaptcha

import (
	"context"
)

// ChallengeKind identifies how a challenge clip was produced.
type ChallengeKind uint8

const (
	// ChallengeLexical is an exported constant or variable used by the captcha engine.
	ChallengeLexical ChallengeKind = iota
	// ChallengeEnvironmental is an exported constant or variable used by the captcha engine.
	ChallengeEnvironmental
	// ChallengeFallbackNoise is an exported constant or variable used by the captcha engine.
	ChallengeFallbackNoise
)

// String returns the audit/metrics label for the challenge kind.
func (k ChallengeKind) String() string {
	switch k {
	case ChallengeLexical:
		return "lexical"
	case ChallengeEnvironmental:
		return "environmental"
	case ChallengeFallbackNoise:
		return "fallback_noise"
	default:
		return "unknown"
	}
}

// IssueResult is returned by [Engine.IssueChallenge]. Audio is the mixed clip in
// the fixed distribution format (16-bit mono PCM WAV), base64 standard encoding.
// ExpireAt is the absolute expiry as unix seconds.
type IssueResult struct {
	Audio        string
	CaptchaID    string
	SessionToken string
	ExpireAt     int64
	Kind         ChallengeKind
}

// VerifyResult is returned by [Engine.VerifyChallenge]. Success false with a nil
// error means the answer scored below the similarity threshold; the session stays
// pending and the caller may retry until expiry. PassToken is only set on success
// when pass-token issuance is enabled.
type VerifyResult struct {
	Success   bool
	Message   string
	Score     float64
	PassToken string
}

// ClipRef points at one candidate clip in an external sound repository.
// PreviewURL is the fetchable rendition; DurationMs is advisory.
type ClipRef struct {
	ID         string
	PreviewURL string
	DurationMs int
}

// Synthesizer converts a short text into speech audio. Implementations must
// return 16-bit mono PCM WAV bytes. A Synthesizer failure is not recoverable and
// surfaces to the issue caller as an internal failure.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, locale string) ([]byte, error)
}

// SoundLibrary is an external repository of real-world sound clips. Both methods
// may fail; failures are recoverable and trigger the selector's synthetic-noise
// fallback, never an error past the selector boundary.
type SoundLibrary interface {
	Search(ctx context.Context, query string) ([]ClipRef, error)
	Fetch(ctx context.Context, ref ClipRef) ([]byte, error)
}

// Embedder maps a text to a dense vector. Cosine similarity between vectors is
// computed by the engine itself.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// WordCorpus samples words for lexical challenges. The selector filters samples
// to words longer than four characters; Sample may return shorter words.
type WordCorpus interface {
	Sample() (string, error)
}
