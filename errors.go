package goCaptcha

import "errors"

var (
	// ErrCaptchaNotFound is an exported constant or variable used by the captcha engine.
	ErrCaptchaNotFound = errors.New("captcha not found")
	// ErrCaptchaExpired is an exported constant or variable used by the captcha engine.
	ErrCaptchaExpired = errors.New("captcha expired")
	// ErrSessionTokenInvalid is an exported constant or variable used by the captcha engine.
	ErrSessionTokenInvalid = errors.New("invalid session token")
	// ErrInputTooLong is an exported constant or variable used by the captcha engine.
	ErrInputTooLong = errors.New("answer input too long")
	// ErrIssueRateLimited is an exported constant or variable used by the captcha engine.
	ErrIssueRateLimited = errors.New("captcha issue rate limited")
	// ErrSynthesisUnavailable is an exported constant or variable used by the captcha engine.
	ErrSynthesisUnavailable = errors.New("speech synthesis backend unavailable")
	// ErrScoringUnavailable is an exported constant or variable used by the captcha engine.
	ErrScoringUnavailable = errors.New("similarity scoring backend unavailable")
	// ErrCorpusUnavailable is an exported constant or variable used by the captcha engine.
	ErrCorpusUnavailable = errors.New("word corpus unavailable")
	// ErrPassTokenDisabled is an exported constant or variable used by the captcha engine.
	ErrPassTokenDisabled = errors.New("pass token issuance disabled")
	// ErrPassTokenInvalid is an exported constant or variable used by the captcha engine.
	ErrPassTokenInvalid = errors.New("invalid pass token")
	// ErrEngineNotReady is an exported constant or variable used by the captcha engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrInternal is an exported constant or variable used by the captcha engine.
	ErrInternal = errors.New("internal captcha failure")
)
