package goCaptcha

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestEngineEmitsAuditEvents(t *testing.T) {
	sink := NewChannelSink(64)
	fix := newEngineFixture(t, withConfig(func(cfg *Config) {
		cfg.Audit.Enabled = true
		cfg.Audit.BufferSize = 64
	}), withSink(sink))

	ctx := WithClientKey(context.Background(), "198.51.100.7")
	issued, err := fix.engine.IssueChallenge(ctx)
	if err != nil {
		t.Fatalf("IssueChallenge failed: %v", err)
	}

	select {
	case event := <-sink.Events():
		if event.EventType != "captcha_issue_success" {
			t.Fatalf("expected issue success event, got %q", event.EventType)
		}
		if event.EventID == "" {
			t.Fatal("expected a generated event id")
		}
		if event.CaptchaID != issued.CaptchaID {
			t.Fatalf("event bound to %q, want %q", event.CaptchaID, issued.CaptchaID)
		}
		if event.ClientKey != "198.51.100.7" {
			t.Fatalf("expected client key attribution, got %q", event.ClientKey)
		}
		if !event.Success {
			t.Fatal("expected success flag")
		}
	case <-time.After(time.Second):
		t.Fatal("no audit event received")
	}
}

func TestAuditRejectedVerifyCarriesErrorCode(t *testing.T) {
	sink := NewChannelSink(64)
	fix := newEngineFixture(t, withConfig(func(cfg *Config) {
		cfg.Audit.Enabled = true
		cfg.Audit.BufferSize = 64
	}), withSink(sink))

	if _, err := fix.engine.VerifyChallenge(context.Background(), "no-such-captcha", "", "answer"); err == nil {
		t.Fatal("expected verify to fail")
	}

	select {
	case event := <-sink.Events():
		if event.EventType != "captcha_verify_rejected" {
			t.Fatalf("expected rejected event, got %q", event.EventType)
		}
		if event.Error != "captcha_not_found" {
			t.Fatalf("expected captcha_not_found code, got %q", event.Error)
		}
	case <-time.After(time.Second):
		t.Fatal("no audit event received")
	}
}

func TestJSONWriterSinkWritesNewlineDelimited(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), AuditEvent{EventID: "a", EventType: "captcha_issue_success", Success: true})
	sink.Emit(context.Background(), AuditEvent{EventID: "b", EventType: "captcha_verify_mismatch"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	var event AuditEvent
	if err := json.Unmarshal([]byte(lines[0]), &event); err != nil {
		t.Fatalf("line 0 is not valid json: %v", err)
	}
	if event.EventID != "a" || !event.Success {
		t.Fatalf("unexpected first event: %+v", event)
	}
}

// blockingSink never consumes, so a full dispatcher buffer must drop.
type blockingSink struct {
	release chan struct{}
}

func (s *blockingSink) Emit(_ context.Context, _ AuditEvent) {
	<-s.release
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{})}
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	// One event blocks inside the sink, one fills the buffer; everything past
	// that is dropped and counted.
	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: "captcha_issue_success"})
	}

	waitFor(t, time.Second, func() bool {
		return d.Dropped() >= 8
	})

	close(sink.release)
	d.Close()
}

func TestDispatcherDisabledIsNil(t *testing.T) {
	if d := newAuditDispatcher(AuditConfig{Enabled: false}, nil); d != nil {
		t.Fatal("disabled dispatcher must be nil")
	}

	// Nil dispatchers are safe to use.
	var d *auditDispatcher
	d.Emit(context.Background(), AuditEvent{})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher reported drops")
	}
}

func TestDispatcherDrainsOnClose(t *testing.T) {
	sink := NewChannelSink(16)
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 16, DropIfFull: true}, sink)

	for i := 0; i < 5; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: "captcha_issue_success"})
	}
	d.Close()

	received := 0
	for {
		select {
		case <-sink.Events():
			received++
			if received == 5 {
				return
			}
		case <-time.After(time.Second):
			t.Fatalf("only %d of 5 events delivered before close", received)
		}
	}
}
