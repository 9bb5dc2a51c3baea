package goCaptcha

import (
	"testing"
	"time"
)

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Challenge.TTL != 2*time.Minute {
		t.Fatalf("unexpected challenge TTL %v", cfg.Challenge.TTL)
	}
	if cfg.Challenge.WordLocale != "pt" {
		t.Fatalf("unexpected locale %q", cfg.Challenge.WordLocale)
	}
	if cfg.Challenge.MinWordLength != 5 {
		t.Fatalf("unexpected minimum word length %d", cfg.Challenge.MinWordLength)
	}
	if len(cfg.Challenge.Queries) != 8 {
		t.Fatalf("expected 8 environmental queries, got %d", len(cfg.Challenge.Queries))
	}
	if cfg.Challenge.MaxClipDurationMs != 5000 || cfg.Challenge.ClipGainDB != -10 {
		t.Fatalf("unexpected clip normalization: %d %v", cfg.Challenge.MaxClipDurationMs, cfg.Challenge.ClipGainDB)
	}
	if cfg.Challenge.FallbackAnswer != "noise" || cfg.Challenge.FallbackDurationMs != 3000 {
		t.Fatalf("unexpected fallback: %q %d", cfg.Challenge.FallbackAnswer, cfg.Challenge.FallbackDurationMs)
	}
	if cfg.Noise.MinAttenuationDB != 15 || cfg.Noise.MaxAttenuationDB != 25 {
		t.Fatalf("unexpected noise range: %d..%d", cfg.Noise.MinAttenuationDB, cfg.Noise.MaxAttenuationDB)
	}
	if cfg.Verify.SimilarityThreshold != 0.6 {
		t.Fatalf("unexpected threshold %v", cfg.Verify.SimilarityThreshold)
	}
	if cfg.Verify.MaxInputLength != 100 {
		t.Fatalf("unexpected input limit %d", cfg.Verify.MaxInputLength)
	}
	if !cfg.Security.EnableIssueThrottle || cfg.Security.MaxIssuesPerWindow != 5 || cfg.Security.IssueWindow != time.Minute {
		t.Fatalf("unexpected throttle defaults: %+v", cfg.Security)
	}
	if cfg.PassToken.Enabled {
		t.Fatal("pass tokens must default to disabled")
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config does not validate: %v", err)
	}
}

func TestConfigValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero ttl", func(c *Config) { c.Challenge.TTL = 0 }},
		{"zero min word length", func(c *Config) { c.Challenge.MinWordLength = 0 }},
		{"no queries", func(c *Config) { c.Challenge.Queries = nil }},
		{"zero clip duration", func(c *Config) { c.Challenge.MaxClipDurationMs = 0 }},
		{"zero fallback duration", func(c *Config) { c.Challenge.FallbackDurationMs = 0 }},
		{"empty fallback answer", func(c *Config) { c.Challenge.FallbackAnswer = "" }},
		{"zero noise floor", func(c *Config) { c.Noise.MinAttenuationDB = 0 }},
		{"inverted noise range", func(c *Config) { c.Noise.MaxAttenuationDB = c.Noise.MinAttenuationDB - 1 }},
		{"threshold too low", func(c *Config) { c.Verify.SimilarityThreshold = 0 }},
		{"threshold too high", func(c *Config) { c.Verify.SimilarityThreshold = 1 }},
		{"zero input limit", func(c *Config) { c.Verify.MaxInputLength = 0 }},
		{"zero throttle budget", func(c *Config) { c.Security.MaxIssuesPerWindow = 0 }},
		{"zero throttle window", func(c *Config) { c.Security.IssueWindow = 0 }},
		{"empty redis prefix", func(c *Config) { c.Security.RedisPrefix = "" }},
		{"pass token without key", func(c *Config) {
			c.PassToken.Enabled = true
			c.PassToken.PrivateKey = nil
		}},
		{"pass token bad method", func(c *Config) {
			c.PassToken.Enabled = true
			c.PassToken.PrivateKey = []byte("secret")
			c.PassToken.SigningMethod = "rs512"
		}},
		{"ed25519 without public key", func(c *Config) {
			c.PassToken.Enabled = true
			c.PassToken.SigningMethod = "ed25519"
			c.PassToken.PrivateKey = []byte("secret")
			c.PassToken.PublicKey = nil
		}},
		{"negative sweep interval", func(c *Config) { c.Store.SweepInterval = -time.Second }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation to fail")
			}
		})
	}
}

func TestCloneConfigIsDeep(t *testing.T) {
	cfg := defaultConfig()
	cfg.PassToken.PrivateKey = []byte("secret-key-material")

	cloned := cloneConfig(cfg)
	cloned.Challenge.Queries[0] = "mutated"
	cloned.PassToken.PrivateKey[0] = 'X'

	if cfg.Challenge.Queries[0] == "mutated" {
		t.Fatal("query mutation leaked into the source config")
	}
	if cfg.PassToken.PrivateKey[0] == 'X' {
		t.Fatal("key mutation leaked into the source config")
	}
}

func TestBuilderRequiresDependencies(t *testing.T) {
	cfg := defaultConfig()
	cfg.Security.EnableIssueThrottle = false

	if _, err := New().WithConfig(cfg).Build(); err == nil {
		t.Fatal("expected build without synthesizer to fail")
	}

	synth := &fakeSynthesizer{payload: []byte("wav")}
	if _, err := New().WithConfig(cfg).WithSynthesizer(synth).Build(); err == nil {
		t.Fatal("expected build without embedder to fail")
	}

	// The default config enables the throttle, which needs a redis client.
	if _, err := New().
		WithSynthesizer(synth).
		WithEmbedder(&fakeEmbedder{}).
		WithCorpus(&fakeCorpus{words: []string{"cachorro"}}).
		Build(); err == nil {
		t.Fatal("expected build without redis to fail")
	}
}

func TestBuilderIsSingleUse(t *testing.T) {
	cfg := defaultConfig()
	cfg.Security.EnableIssueThrottle = false

	builder := New().
		WithConfig(cfg).
		WithSynthesizer(&fakeSynthesizer{payload: []byte("wav")}).
		WithEmbedder(&fakeEmbedder{}).
		WithCorpus(&fakeCorpus{words: []string{"cachorro"}})

	engine, err := builder.Build()
	if err != nil {
		t.Fatalf("first build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	if _, err := builder.Build(); err == nil {
		t.Fatal("expected second build to fail")
	}
}
