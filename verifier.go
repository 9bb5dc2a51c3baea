package goCaptcha

import (
	"context"
	"fmt"
	"math"

	"github.com/hearsum/goCaptcha/internal/text"
)

// answerVerifier scores a user answer against the stored expected answer by
// cosine similarity over embedding vectors. The user input is folded to
// lowercase ASCII-ish form before embedding; the stored answer is embedded as
// recorded, since it was produced by the engine itself.
type answerVerifier struct {
	cfg      VerifyConfig
	embedder Embedder
}

func newAnswerVerifier(cfg VerifyConfig, embedder Embedder) *answerVerifier {
	return &answerVerifier{
		cfg:      cfg,
		embedder: embedder,
	}
}

// Score returns the similarity in [-1, 1] and whether it clears the threshold.
// The threshold comparison is strict: a score exactly at the threshold fails.
func (v *answerVerifier) Score(ctx context.Context, expected, input string) (float64, bool, error) {
	folded := text.Fold(input)

	expectedVec, err := v.embedder.Embed(ctx, expected)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %v", ErrScoringUnavailable, err)
	}
	inputVec, err := v.embedder.Embed(ctx, folded)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %v", ErrScoringUnavailable, err)
	}

	score := cosineSimilarity(expectedVec, inputVec)
	return score, score > v.cfg.SimilarityThreshold, nil
}

// cosineSimilarity returns 0 for mismatched dimensions or zero-magnitude
// vectors, which can never clear a positive threshold.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
