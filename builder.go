package goCaptcha

import (
	"errors"

	"github.com/hearsum/goCaptcha/internal/rate"
	"github.com/hearsum/goCaptcha/jwt"
	"github.com/redis/go-redis/v9"
)

// Builder defines a public type used by goCaptcha APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	synthesizer Synthesizer
	sounds      SoundLibrary
	embedder    Embedder
	corpus      WordCorpus
	auditSink   AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis may return an error when input validation, dependency calls, or security checks fail.
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithSynthesizer describes the withsynthesizer operation and its observable behavior.
//
// WithSynthesizer may return an error when input validation, dependency calls, or security checks fail.
// WithSynthesizer does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithSynthesizer(s Synthesizer) *Builder {
	b.synthesizer = s
	return b
}

// WithSoundLibrary describes the withsoundlibrary operation and its observable behavior.
//
// WithSoundLibrary may return an error when input validation, dependency calls, or security checks fail.
// WithSoundLibrary does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithSoundLibrary(s SoundLibrary) *Builder {
	b.sounds = s
	return b
}

// WithEmbedder describes the withembedder operation and its observable behavior.
//
// WithEmbedder may return an error when input validation, dependency calls, or security checks fail.
// WithEmbedder does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithEmbedder(e Embedder) *Builder {
	b.embedder = e
	return b
}

// WithCorpus describes the withcorpus operation and its observable behavior.
//
// WithCorpus may return an error when input validation, dependency calls, or security checks fail.
// WithCorpus does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithCorpus(c WordCorpus) *Builder {
	b.corpus = c
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink may return an error when input validation, dependency calls, or security checks fail.
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms may return an error when input validation, dependency calls, or security checks fail.
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.synthesizer == nil {
		return nil, errors.New("synthesizer required")
	}
	if b.embedder == nil {
		return nil, errors.New("embedder required")
	}
	if b.corpus == nil {
		return nil, errors.New("word corpus required")
	}
	if cfg.Security.EnableIssueThrottle && b.redis == nil {
		return nil, errors.New("issue throttle requires redis client")
	}

	engine := &Engine{
		config: cloneConfig(cfg),
	}

	engine.metrics = NewMetrics(cfg.Metrics)
	engine.store = newCaptchaSessionStore(cfg.Store, func(n int) {
		engine.metrics.Add(MetricSessionSwept, uint64(n))
	})
	engine.selector = newChallengeSourceSelector(cfg.Challenge, b.synthesizer, b.sounds, b.corpus)
	engine.injector = newNoiseInjector(cfg.Noise)
	engine.verifier = newAnswerVerifier(cfg.Verify, b.embedder)
	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink)

	if cfg.Security.EnableIssueThrottle {
		engine.rateLimiter = rate.New(b.redis, rate.Config{
			MaxIssuesPerWindow: cfg.Security.MaxIssuesPerWindow,
			IssueWindow:        cfg.Security.IssueWindow,
			KeyPrefix:          cfg.Security.RedisPrefix,
		})
	}

	if cfg.PassToken.Enabled {
		jm, err := jwt.NewManager(jwt.Config{
			PassTTL:       cfg.PassToken.TTL,
			SigningMethod: jwt.SigningMethod(cfg.PassToken.SigningMethod),
			PrivateKey:    cloneBytes(cfg.PassToken.PrivateKey),
			PublicKey:     cloneBytes(cfg.PassToken.PublicKey),
			Issuer:        cfg.PassToken.Issuer,
		})
		if err != nil {
			return nil, err
		}
		engine.passTokens = jm
	}

	b.built = true

	return engine, nil
}
