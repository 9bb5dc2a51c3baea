package goCaptcha

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/hearsum/goCaptcha/internal/audio"
)

func testWAV(t *testing.T, ms int) []byte {
	t.Helper()

	n := audio.DistributionSampleRate * ms / 1000
	clip := &audio.Clip{SampleRate: audio.DistributionSampleRate, Samples: make([]float64, n)}
	for i := range clip.Samples {
		clip.Samples[i] = 0.4 * math.Sin(2*math.Pi*330*float64(i)/float64(audio.DistributionSampleRate))
	}

	payload, err := audio.EncodeWAV(clip)
	if err != nil {
		t.Fatalf("test wav encode failed: %v", err)
	}
	return payload
}

type fakeSynthesizer struct {
	mu      sync.Mutex
	payload []byte
	err     error
	calls   []string
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, text, _ string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)
	if f.err != nil {
		return nil, f.err
	}
	return f.payload, nil
}

type fakeSoundLibrary struct {
	mu        sync.Mutex
	refs      []ClipRef
	payload   []byte
	searchErr error
	fetchErr  error
	searches  int
	fetches   int
}

func (f *fakeSoundLibrary) Search(_ context.Context, _ string) ([]ClipRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.refs, nil
}

func (f *fakeSoundLibrary) Fetch(_ context.Context, _ ClipRef) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.payload, nil
}

// fakeEmbedder assigns every distinct string its own basis dimension. Identical
// strings embed identically (cosine 1); distinct strings are orthogonal
// (cosine 0), so threshold checks are exact in tests.
type fakeEmbedder struct {
	err   error
	calls atomic.Int64

	mu   sync.Mutex
	dims map[string]int
}

const embedderDims = 4096

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}

	f.mu.Lock()
	if f.dims == nil {
		f.dims = make(map[string]int)
	}
	dim, ok := f.dims[text]
	if !ok {
		dim = len(f.dims) % embedderDims
		f.dims[text] = dim
	}
	f.mu.Unlock()

	vec := make([]float64, embedderDims)
	vec[dim] = 1
	return vec, nil
}

type fakeCorpus struct {
	words []string
	err   error
	next  atomic.Int64
}

func (f *fakeCorpus) Sample() (string, error) {
	if f.err != nil {
		return "", f.err
	}
	i := f.next.Add(1) - 1
	return f.words[int(i)%len(f.words)], nil
}

type engineFixture struct {
	engine   *Engine
	synth    *fakeSynthesizer
	sounds   *fakeSoundLibrary
	embedder *fakeEmbedder
	corpus   *fakeCorpus
	redis    *miniredis.Miniredis

	auditSink AuditSink
}

type fixtureOption func(*Config, *engineFixture)

func withThrottle(max int, window time.Duration) fixtureOption {
	return func(cfg *Config, _ *engineFixture) {
		cfg.Security.EnableIssueThrottle = true
		cfg.Security.MaxIssuesPerWindow = max
		cfg.Security.IssueWindow = window
	}
}

func withConfig(mutate func(*Config)) fixtureOption {
	return func(cfg *Config, _ *engineFixture) {
		mutate(cfg)
	}
}

func withSink(sink AuditSink) fixtureOption {
	return func(_ *Config, fix *engineFixture) {
		fix.auditSink = sink
	}
}

func newEngineFixture(t *testing.T, opts ...fixtureOption) *engineFixture {
	t.Helper()

	fix := &engineFixture{
		synth:    &fakeSynthesizer{payload: testWAV(t, 400)},
		sounds:   &fakeSoundLibrary{refs: []ClipRef{{ID: "1", PreviewURL: "mem://1"}}, payload: testWAV(t, 6000)},
		embedder: &fakeEmbedder{},
		corpus:   &fakeCorpus{words: []string{"cachorro", "sereia", "trovao"}},
	}

	cfg := defaultConfig()
	cfg.Store.SweepInterval = 0
	cfg.Metrics.Enabled = true
	cfg.Security.EnableIssueThrottle = false

	for _, opt := range opts {
		opt(&cfg, fix)
	}

	builder := New().
		WithConfig(cfg).
		WithSynthesizer(fix.synth).
		WithSoundLibrary(fix.sounds).
		WithEmbedder(fix.embedder).
		WithCorpus(fix.corpus)

	if fix.auditSink != nil {
		builder = builder.WithAuditSink(fix.auditSink)
	}

	if cfg.Security.EnableIssueThrottle {
		mr, err := miniredis.Run()
		if err != nil {
			t.Fatalf("miniredis run failed: %v", err)
		}
		fix.redis = mr
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		builder = builder.WithRedis(rdb)
		t.Cleanup(func() {
			_ = rdb.Close()
			mr.Close()
		})
	}

	engine, err := builder.Build()
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	fix.engine = engine
	return fix
}

// issueOfKind issues challenges until one of the wanted kind comes out. The
// selector flips a fair coin per issue, so a bounded number of draws is enough.
func issueOfKind(t *testing.T, fix *engineFixture, kind ChallengeKind) *IssueResult {
	t.Helper()

	for i := 0; i < 200; i++ {
		res, err := fix.engine.IssueChallenge(context.Background())
		if err != nil {
			t.Fatalf("issue %d failed: %v", i, err)
		}
		if res.Kind == kind {
			return res
		}
	}
	t.Fatalf("no challenge of kind %s in 200 issues", kind)
	return nil
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

var errBackendDown = errors.New("backend down")
