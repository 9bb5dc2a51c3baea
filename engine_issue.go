package goCaptcha

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/hearsum/goCaptcha/internal/audio"
	"github.com/hearsum/goCaptcha/internal/rate"
)

// IssueChallenge describes the issuechallenge operation and its observable behavior.
//
// IssueChallenge may return an error when input validation, dependency calls, or security checks fail.
// IssueChallenge does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) IssueChallenge(ctx context.Context) (*IssueResult, error) {
	if e == nil || e.store == nil || e.selector == nil {
		return nil, ErrEngineNotReady
	}

	clientKey := clientKeyFromContext(ctx)

	if e.rateLimiter != nil && clientKey != "" {
		if err := e.rateLimiter.AllowIssue(ctx, clientKey); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				e.metricInc(MetricIssueRateLimited)
				e.emitAudit(ctx, auditEventIssueRateLimited, false, "", "", ErrIssueRateLimited, nil)
				return nil, ErrIssueRateLimited
			}
			e.metricInc(MetricIssueFailure)
			e.emitAudit(ctx, auditEventIssueFailure, false, "", "", ErrInternal, nil)
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}
	}

	ch, err := e.selector.Pick(ctx)
	if err != nil {
		e.metricInc(MetricIssueFailure)
		e.emitAudit(ctx, auditEventIssueFailure, false, "", "", err, nil)
		return nil, err
	}

	switch ch.Kind {
	case ChallengeLexical:
		e.metricInc(MetricChallengeLexical)
	case ChallengeEnvironmental:
		e.metricInc(MetricChallengeEnvironmental)
	case ChallengeFallbackNoise:
		e.metricInc(MetricChallengeFallback)
	}

	if e.injector != nil {
		if err := e.injector.Inject(ch.Clip); err != nil {
			e.metricInc(MetricIssueFailure)
			e.emitAudit(ctx, auditEventIssueFailure, false, "", ch.Kind.String(), err, nil)
			return nil, err
		}
	}

	payload, err := audio.EncodeWAV(ch.Clip)
	if err != nil {
		e.metricInc(MetricIssueFailure)
		e.emitAudit(ctx, auditEventIssueFailure, false, "", ch.Kind.String(), ErrInternal, nil)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	id, token, expireAt, err := e.store.Create(ch.Answer, ch.Kind, e.config.Challenge.TTL)
	if err != nil {
		e.metricInc(MetricIssueFailure)
		e.emitAudit(ctx, auditEventIssueFailure, false, "", ch.Kind.String(), ErrInternal, nil)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	e.metricInc(MetricSessionCreated)
	e.metricInc(MetricIssueSuccess)
	e.emitAudit(ctx, auditEventIssueSuccess, true, id, ch.Kind.String(), nil, func() map[string]string {
		return map[string]string{
			"duration_ms": fmt.Sprintf("%d", ch.Clip.DurationMs()),
		}
	})

	return &IssueResult{
		Audio:        base64.StdEncoding.EncodeToString(payload),
		CaptchaID:    id,
		SessionToken: token,
		ExpireAt:     expireAt,
		Kind:         ch.Kind,
	}, nil
}
