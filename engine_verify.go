package goCaptcha

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// VerifyChallenge describes the verifychallenge operation and its observable behavior.
//
// VerifyChallenge may return an error when input validation, dependency calls, or security checks fail.
// VerifyChallenge does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) VerifyChallenge(ctx context.Context, captchaID, sessionToken, input string) (*VerifyResult, error) {
	if e == nil || e.store == nil || e.verifier == nil {
		return nil, ErrEngineNotReady
	}

	start := time.Now()
	defer func() {
		if e.metrics.LatencyEnabled() {
			e.metrics.Observe(MetricVerifyLatency, time.Since(start))
		}
	}()

	// Length gate runs before any backend call so oversized payloads never
	// reach the embedding provider.
	if len([]rune(input)) > e.config.Verify.MaxInputLength {
		e.metricInc(MetricVerifyInputTooLong)
		e.emitAudit(ctx, auditEventVerifyRejected, false, captchaID, "", ErrInputTooLong, nil)
		return nil, ErrInputTooLong
	}

	if e.config.Verify.RequireSessionToken && sessionToken == "" {
		e.metricInc(MetricVerifyUnauthorized)
		e.emitAudit(ctx, auditEventVerifyRejected, false, captchaID, "", ErrSessionTokenInvalid, nil)
		return nil, ErrSessionTokenInvalid
	}

	record, err := e.store.Validate(captchaID, sessionToken)
	if err != nil {
		mapped := mapCaptchaStoreError(err)
		switch {
		case errors.Is(mapped, ErrCaptchaNotFound):
			e.metricInc(MetricVerifyNotFound)
		case errors.Is(mapped, ErrCaptchaExpired):
			e.metricInc(MetricVerifyExpired)
		case errors.Is(mapped, ErrSessionTokenInvalid):
			e.metricInc(MetricVerifyUnauthorized)
		}
		e.emitAudit(ctx, auditEventVerifyRejected, false, captchaID, "", mapped, nil)
		return nil, mapped
	}

	score, ok, err := e.verifier.Score(ctx, record.Answer, input)
	if err != nil {
		e.metricInc(MetricVerifyFailure)
		e.emitAudit(ctx, auditEventVerifyFailure, false, captchaID, record.Kind.String(), err, nil)
		return nil, err
	}

	if !ok {
		// The session stays pending: the caller may retry until expiry.
		e.metricInc(MetricVerifyMismatch)
		e.emitAudit(ctx, auditEventVerifyMismatch, false, captchaID, record.Kind.String(), nil, func() map[string]string {
			return map[string]string{
				"score": fmt.Sprintf("%.4f", score),
			}
		})
		return &VerifyResult{
			Success: false,
			Message: "incorrect answer",
			Score:   score,
		}, nil
	}

	if !e.store.Consume(captchaID) {
		// A concurrent verify won the consume race; this caller observes the
		// session as already gone.
		e.metricInc(MetricVerifyNotFound)
		e.emitAudit(ctx, auditEventVerifyRejected, false, captchaID, record.Kind.String(), ErrCaptchaNotFound, nil)
		return nil, ErrCaptchaNotFound
	}

	result := &VerifyResult{
		Success: true,
		Message: "captcha solved",
		Score:   score,
	}

	if e.passTokens != nil {
		pass, err := e.passTokens.CreatePass(captchaID)
		if err != nil {
			e.metricInc(MetricVerifyFailure)
			e.emitAudit(ctx, auditEventVerifyFailure, false, captchaID, record.Kind.String(), ErrInternal, nil)
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}
		result.PassToken = pass
	}

	e.metricInc(MetricSessionConsumed)
	e.metricInc(MetricVerifySuccess)
	e.emitAudit(ctx, auditEventVerifySuccess, true, captchaID, record.Kind.String(), nil, func() map[string]string {
		return map[string]string{
			"score": fmt.Sprintf("%.4f", score),
		}
	})

	return result, nil
}

func mapCaptchaStoreError(err error) error {
	switch {
	case errors.Is(err, errCaptchaSessionNotFound):
		return ErrCaptchaNotFound
	case errors.Is(err, errCaptchaSessionExpired):
		return ErrCaptchaExpired
	case errors.Is(err, errCaptchaTokenMismatch):
		return ErrSessionTokenInvalid
	default:
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}
