package internaldefs

import (
	goCaptcha "github.com/hearsum/goCaptcha"
)

// CounterDef defines a public type used by goCaptcha APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goCaptcha.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goCaptcha APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goCaptcha.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the captcha engine.
var CounterDefs = []CounterDef{
	{ID: goCaptcha.MetricIssueSuccess, Name: "gocaptcha_issue_success_total", Help: "Successfully issued challenges."},
	{ID: goCaptcha.MetricIssueFailure, Name: "gocaptcha_issue_failure_total", Help: "Failed challenge issues."},
	{ID: goCaptcha.MetricIssueRateLimited, Name: "gocaptcha_issue_rate_limited_total", Help: "Rate-limited challenge issues."},
	{ID: goCaptcha.MetricChallengeLexical, Name: "gocaptcha_challenge_lexical_total", Help: "Challenges produced from synthesized speech."},
	{ID: goCaptcha.MetricChallengeEnvironmental, Name: "gocaptcha_challenge_environmental_total", Help: "Challenges produced from environmental sound clips."},
	{ID: goCaptcha.MetricChallengeFallback, Name: "gocaptcha_challenge_fallback_total", Help: "Challenges degraded to synthetic noise."},
	{ID: goCaptcha.MetricVerifySuccess, Name: "gocaptcha_verify_success_total", Help: "Successful answer verifications."},
	{ID: goCaptcha.MetricVerifyMismatch, Name: "gocaptcha_verify_mismatch_total", Help: "Answers scored below the similarity threshold."},
	{ID: goCaptcha.MetricVerifyNotFound, Name: "gocaptcha_verify_not_found_total", Help: "Verification attempts against unknown captcha ids."},
	{ID: goCaptcha.MetricVerifyExpired, Name: "gocaptcha_verify_expired_total", Help: "Verification attempts against expired sessions."},
	{ID: goCaptcha.MetricVerifyUnauthorized, Name: "gocaptcha_verify_unauthorized_total", Help: "Verification attempts rejected by the session token check."},
	{ID: goCaptcha.MetricVerifyInputTooLong, Name: "gocaptcha_verify_input_too_long_total", Help: "Verification attempts rejected by the input length gate."},
	{ID: goCaptcha.MetricVerifyFailure, Name: "gocaptcha_verify_failure_total", Help: "Verification attempts failed by backend errors."},
	{ID: goCaptcha.MetricSessionCreated, Name: "gocaptcha_session_created_total", Help: "Created challenge sessions."},
	{ID: goCaptcha.MetricSessionConsumed, Name: "gocaptcha_session_consumed_total", Help: "Consumed challenge sessions."},
	{ID: goCaptcha.MetricSessionSwept, Name: "gocaptcha_session_swept_total", Help: "Expired sessions removed by the background sweeper."},
}

// HistogramDefs is an exported constant or variable used by the captcha engine.
var HistogramDefs = []HistogramDef{
	{ID: goCaptcha.MetricVerifyLatency, Name: "gocaptcha_verify_latency_seconds", Help: "Verify latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the captcha engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the captcha engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
