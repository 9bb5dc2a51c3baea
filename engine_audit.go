package goCaptcha

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	auditEventIssueSuccess     = "captcha_issue_success"
	auditEventIssueFailure     = "captcha_issue_failure"
	auditEventIssueRateLimited = "captcha_issue_rate_limited"
	auditEventVerifySuccess    = "captcha_verify_success"
	auditEventVerifyMismatch   = "captcha_verify_mismatch"
	auditEventVerifyRejected   = "captcha_verify_rejected"
	auditEventVerifyFailure    = "captcha_verify_failure"
)

// AuditErrorCode defines a public type used by goCaptcha APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrNotFound       AuditErrorCode = "captcha_not_found"
	auditErrExpired        AuditErrorCode = "captcha_expired"
	auditErrTokenMismatch  AuditErrorCode = "session_token_mismatch"
	auditErrInputTooLong   AuditErrorCode = "input_too_long"
	auditErrRateLimited    AuditErrorCode = "rate_limited"
	auditErrSynthesisDown  AuditErrorCode = "synthesis_unavailable"
	auditErrScoringDown    AuditErrorCode = "scoring_unavailable"
	auditErrCorpusDown     AuditErrorCode = "corpus_unavailable"
	auditErrInternalFailed AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	captchaID string,
	kind string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		EventID:   uuid.NewString(),
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		CaptchaID: captchaID,
		ClientKey: clientKeyFromContext(ctx),
		Kind:      kind,
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrCaptchaNotFound):
		return auditErrNotFound
	case errors.Is(err, ErrCaptchaExpired):
		return auditErrExpired
	case errors.Is(err, ErrSessionTokenInvalid):
		return auditErrTokenMismatch
	case errors.Is(err, ErrInputTooLong):
		return auditErrInputTooLong
	case errors.Is(err, ErrIssueRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrSynthesisUnavailable):
		return auditErrSynthesisDown
	case errors.Is(err, ErrScoringUnavailable):
		return auditErrScoringDown
	case errors.Is(err, ErrCorpusUnavailable):
		return auditErrCorpusDown
	default:
		return auditErrInternalFailed
	}
}
