package goCaptcha

import (
	"github.com/hearsum/goCaptcha/internal/rate"
	"github.com/hearsum/goCaptcha/jwt"
)

// Engine defines a public type used by goCaptcha APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config      Config
	store       *captchaSessionStore
	selector    *challengeSourceSelector
	injector    *noiseInjector
	verifier    *answerVerifier
	rateLimiter *rate.Limiter
	passTokens  *jwt.Manager
	audit       *auditDispatcher
	metrics     *Metrics
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.store != nil {
		e.store.Close()
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// PendingSessions describes the pendingsessions operation and its observable behavior.
//
// PendingSessions may return an error when input validation, dependency calls, or security checks fail.
// PendingSessions does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) PendingSessions() int {
	if e == nil || e.store == nil {
		return 0
	}
	return e.store.Len()
}

// ValidatePass describes the validatepass operation and its observable behavior.
//
// ValidatePass may return an error when input validation, dependency calls, or security checks fail.
// ValidatePass does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ValidatePass(token string) (*jwt.PassClaims, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if e.passTokens == nil {
		return nil, ErrPassTokenDisabled
	}

	claims, err := e.passTokens.ParsePass(token)
	if err != nil {
		return nil, ErrPassTokenInvalid
	}
	return claims, nil
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}
