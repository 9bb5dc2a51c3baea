package goCaptcha

import (
	"errors"
	"time"
)

// Config defines a public type used by goCaptcha APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Challenge ChallengeConfig
	Noise     NoiseConfig
	Verify    VerifyConfig
	Security  SecurityConfig
	PassToken PassTokenConfig
	Store     StoreConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
CHALLENGE CONFIG
====================================
*/

// ChallengeConfig defines a public type used by goCaptcha APIs.
//
// ChallengeConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ChallengeConfig struct {
	TTL                 time.Duration
	WordLocale          string
	MinWordLength       int
	LexicalFallbackWord string
	Queries             []string
	MaxClipDurationMs   int
	ClipGainDB          float64
	FallbackDurationMs  int
	FallbackAnswer      string
}

/*
====================================
NOISE CONFIG
====================================
*/

// NoiseConfig defines a public type used by goCaptcha APIs.
//
// NoiseConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type NoiseConfig struct {
	MinAttenuationDB int
	MaxAttenuationDB int
}

// VerifyConfig defines a public type used by goCaptcha APIs.
//
// VerifyConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type VerifyConfig struct {
	SimilarityThreshold float64
	MaxInputLength      int
	RequireSessionToken bool
}

/*
====================================
SECURITY CONFIG
====================================
*/

// SecurityConfig defines a public type used by goCaptcha APIs.
//
// SecurityConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SecurityConfig struct {
	EnableIssueThrottle bool
	MaxIssuesPerWindow  int
	IssueWindow         time.Duration
	RedisPrefix         string
}

// PassTokenConfig defines a public type used by goCaptcha APIs.
//
// PassTokenConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PassTokenConfig struct {
	Enabled       bool
	TTL           time.Duration
	SigningMethod string // "hs256" (default), "ed25519" optional
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
}

// StoreConfig defines a public type used by goCaptcha APIs.
//
// StoreConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type StoreConfig struct {
	// SweepInterval bounds memory held by abandoned sessions. Zero disables the
	// background reaper; expired records are still purged lazily on access.
	SweepInterval time.Duration
}

// AuditConfig defines a public type used by goCaptcha APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by goCaptcha APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the configuration the engine starts from when no
// overrides are supplied. Callers may adjust the returned value and pass it to
// [Builder.WithConfig].
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Challenge: ChallengeConfig{
			TTL:                 2 * time.Minute,
			WordLocale:          "pt",
			MinWordLength:       5,
			LexicalFallbackWord: "captcha",
			Queries: []string{
				"dog barking", "siren", "talking", "birds chirping",
				"car horn", "rain", "wind", "laughing",
			},
			MaxClipDurationMs:  5000,
			ClipGainDB:         -10,
			FallbackDurationMs: 3000,
			FallbackAnswer:     "noise",
		},
		Noise: NoiseConfig{
			MinAttenuationDB: 15,
			MaxAttenuationDB: 25,
		},
		Verify: VerifyConfig{
			SimilarityThreshold: 0.6,
			MaxInputLength:      100,
			RequireSessionToken: false,
		},
		Security: SecurityConfig{
			EnableIssueThrottle: true,
			MaxIssuesPerWindow:  5,
			IssueWindow:         time.Minute,
			RedisPrefix:         "cap",
		},
		PassToken: PassTokenConfig{
			Enabled:       false,
			TTL:           5 * time.Minute,
			SigningMethod: "hs256",
		},
		Store: StoreConfig{
			SweepInterval: time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Challenge.Queries = cloneStrings(cfg.Challenge.Queries)
	out.PassToken.PrivateKey = cloneBytes(cfg.PassToken.PrivateKey)
	out.PassToken.PublicKey = cloneBytes(cfg.PassToken.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func cloneStrings(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// Challenge
	if c.Challenge.TTL <= 0 {
		return errors.New("Challenge TTL must be > 0")
	}
	if c.Challenge.MinWordLength < 1 {
		return errors.New("Challenge MinWordLength must be >= 1")
	}
	if len(c.Challenge.Queries) == 0 {
		return errors.New("Challenge Queries must not be empty")
	}
	if c.Challenge.MaxClipDurationMs <= 0 {
		return errors.New("Challenge MaxClipDurationMs must be > 0")
	}
	if c.Challenge.FallbackDurationMs <= 0 {
		return errors.New("Challenge FallbackDurationMs must be > 0")
	}
	if c.Challenge.FallbackAnswer == "" {
		return errors.New("Challenge FallbackAnswer must not be empty")
	}

	// Noise
	if c.Noise.MinAttenuationDB <= 0 {
		return errors.New("Noise MinAttenuationDB must be > 0")
	}
	if c.Noise.MaxAttenuationDB < c.Noise.MinAttenuationDB {
		return errors.New("Noise MaxAttenuationDB must be >= MinAttenuationDB")
	}

	// Verify
	if c.Verify.SimilarityThreshold <= 0 || c.Verify.SimilarityThreshold >= 1 {
		return errors.New("Verify SimilarityThreshold must be in (0, 1)")
	}
	if c.Verify.MaxInputLength <= 0 {
		return errors.New("Verify MaxInputLength must be > 0")
	}

	// Security
	if c.Security.EnableIssueThrottle {
		if c.Security.MaxIssuesPerWindow <= 0 {
			return errors.New("Security MaxIssuesPerWindow must be > 0")
		}
		if c.Security.IssueWindow <= 0 {
			return errors.New("Security IssueWindow must be > 0")
		}
		if c.Security.RedisPrefix == "" {
			return errors.New("Security RedisPrefix must not be empty")
		}
	}

	// PassToken
	if c.PassToken.Enabled {
		if c.PassToken.TTL <= 0 {
			return errors.New("PassToken TTL must be > 0")
		}
		if c.PassToken.SigningMethod != "hs256" && c.PassToken.SigningMethod != "ed25519" {
			return errors.New("unsupported PassToken signing method")
		}
		if len(c.PassToken.PrivateKey) == 0 {
			return errors.New("PassToken requires PrivateKey")
		}
		if c.PassToken.SigningMethod == "ed25519" && len(c.PassToken.PublicKey) == 0 {
			return errors.New("ed25519 requires PublicKey")
		}
	}

	// Store
	if c.Store.SweepInterval < 0 {
		return errors.New("Store SweepInterval must be >= 0")
	}

	return nil
}
