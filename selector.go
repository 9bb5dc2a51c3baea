package goCaptcha

import (
	"context"
	"fmt"

	"github.com/hearsum/goCaptcha/internal"
	"github.com/hearsum/goCaptcha/internal/audio"
	"github.com/hearsum/goCaptcha/internal/text"
)

// challenge is the selector's output: a normalized clip plus the answer the
// store must retain for verification.
type challenge struct {
	Clip   *audio.Clip
	Answer string
	Kind   ChallengeKind
}

// challengeSourceSelector picks the source for each new challenge with an even
// coin flip between lexical speech and environmental sound. Environmental
// failures of any kind degrade to a synthetic-noise challenge instead of
// surfacing; lexical failures surface because there is nothing meaningful to
// degrade to.
type challengeSourceSelector struct {
	cfg    ChallengeConfig
	synth  Synthesizer
	sounds SoundLibrary
	corpus WordCorpus
}

func newChallengeSourceSelector(cfg ChallengeConfig, synth Synthesizer, sounds SoundLibrary, corpus WordCorpus) *challengeSourceSelector {
	return &challengeSourceSelector{
		cfg:    cfg,
		synth:  synth,
		sounds: sounds,
		corpus: corpus,
	}
}

// Pick produces one challenge. The returned challenge always carries a clip at
// the distribution sample rate.
func (s *challengeSourceSelector) Pick(ctx context.Context) (*challenge, error) {
	lexical, err := internal.CoinFlip()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if lexical {
		return s.pickLexical(ctx)
	}
	return s.pickEnvironmental(ctx)
}

func (s *challengeSourceSelector) pickLexical(ctx context.Context) (*challenge, error) {
	word, err := s.sampleWord()
	if err != nil {
		return nil, err
	}
	// The stored answer is canonical: the verifier folds user input against it
	// but never folds the expected side, so the word must be folded here.
	word = text.Fold(word)

	payload, err := s.synth.Synthesize(ctx, word, s.cfg.WordLocale)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesisUnavailable, err)
	}

	clip, err := audio.DecodeWAV(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesisUnavailable, err)
	}
	clip = audio.Resample(clip, audio.DistributionSampleRate)

	return &challenge{
		Clip:   clip,
		Answer: word,
		Kind:   ChallengeLexical,
	}, nil
}

// sampleWord draws from the corpus until it finds a word meeting the minimum
// length, with a bounded number of draws. Exhausting the draws falls back to
// the configured lexical fallback word rather than failing the issue.
func (s *challengeSourceSelector) sampleWord() (string, error) {
	const maxDraws = 32

	for i := 0; i < maxDraws; i++ {
		word, err := s.corpus.Sample()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrCorpusUnavailable, err)
		}
		if len([]rune(word)) >= s.cfg.MinWordLength {
			return word, nil
		}
	}

	return s.cfg.LexicalFallbackWord, nil
}

func (s *challengeSourceSelector) pickEnvironmental(ctx context.Context) (*challenge, error) {
	clip, answer, ok := s.fetchEnvironmental(ctx)
	if !ok {
		// Degraded challenge: pure synthetic noise, answered by a fixed word.
		return &challenge{
			Clip:   audio.WhiteNoise(s.cfg.FallbackDurationMs),
			Answer: s.cfg.FallbackAnswer,
			Kind:   ChallengeFallbackNoise,
		}, nil
	}

	return &challenge{
		Clip:   clip,
		Answer: answer,
		Kind:   ChallengeEnvironmental,
	}, nil
}

// fetchEnvironmental attempts the full external pipeline: pick a query, search
// the sound library, fetch one candidate, decode and normalize it. Any failure
// reports ok=false; the caller owns the fallback.
func (s *challengeSourceSelector) fetchEnvironmental(ctx context.Context) (*audio.Clip, string, bool) {
	if s.sounds == nil {
		return nil, "", false
	}

	qi, err := internal.RandomIndex(len(s.cfg.Queries))
	if err != nil {
		return nil, "", false
	}
	query := s.cfg.Queries[qi]

	refs, err := s.sounds.Search(ctx, query)
	if err != nil || len(refs) == 0 {
		return nil, "", false
	}

	ri, err := internal.RandomIndex(len(refs))
	if err != nil {
		return nil, "", false
	}

	payload, err := s.sounds.Fetch(ctx, refs[ri])
	if err != nil {
		return nil, "", false
	}

	clip, err := audio.DecodeWAV(payload)
	if err != nil {
		return nil, "", false
	}

	clip = audio.Resample(clip, audio.DistributionSampleRate)
	clip.Truncate(s.cfg.MaxClipDurationMs)
	clip.ApplyGain(s.cfg.ClipGainDB)

	return clip, query, true
}
