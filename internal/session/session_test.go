package session

import (
	"testing"
	"time"

	"github.com/AriadnaRaffo/profanity-go/internal/config"
)

func TestSetAutoawayValidatesMode(t *testing.T) {
	s := &Session{opts: config.DefaultOptions()}
	if err := s.SetAutoaway("bogus", 10, ""); err == nil {
		t.Fatalf("expected error for invalid autoaway mode")
	}
	if err := s.SetAutoaway("idle", 10, "away from desk"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.opts.AutoawayMode != config.AutoawayIdle || s.opts.AutoawayMinutes != 10 {
		t.Fatalf("unexpected opts after SetAutoaway: %+v", s.opts)
	}
}

func TestSetAutoawayRejectsNegativeMinutes(t *testing.T) {
	s := &Session{opts: config.DefaultOptions()}
	if err := s.SetAutoaway("away", -1, ""); err == nil {
		t.Fatalf("expected error for negative minutes")
	}
}

func TestEvaluateAutoawayNoopWhenModeOff(t *testing.T) {
	s := &Session{opts: config.DefaultOptions(), selfPresence: Online, lastActivityAt: time.Now().Add(-time.Hour)}
	s.evaluateAutoaway(time.Now())
	if s.autoAwayActive {
		t.Fatalf("expected no transition when autoaway mode is off")
	}
}

func TestEvaluateAutoawayNoopBeforeThreshold(t *testing.T) {
	s := &Session{opts: config.DefaultOptions(), selfPresence: Online, lastActivityAt: time.Now()}
	_ = s.opts.SetAutoawayMode("idle")
	s.opts.AutoawayMinutes = 10
	s.evaluateAutoaway(time.Now())
	if s.autoAwayActive {
		t.Fatalf("expected no transition before the idle threshold elapses")
	}
}

func TestSendMessageRequiresConnection(t *testing.T) {
	s := &Session{}
	if _, err := s.SendMessage("alice@example.com", "hi"); err != ErrNotConnected {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestEvaluateAutoawayTransitionsAfterThreshold(t *testing.T) {
	s := &Session{opts: config.DefaultOptions(), selfPresence: Online, lastActivityAt: time.Now().Add(-time.Hour)}
	if err := s.opts.SetAutoawayMode("xa"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.opts.AutoawayMinutes = 10

	s.evaluateAutoaway(time.Now())

	if !s.autoAwayActive || s.selfPresence != Xa {
		t.Fatalf("expected transition to Xa after exceeding the idle threshold, got active=%v presence=%v", s.autoAwayActive, s.selfPresence)
	}
}

func TestEvaluateAutoawayRevertsOnFreshActivity(t *testing.T) {
	s := &Session{opts: config.DefaultOptions(), selfPresence: Away, autoAwayActive: true, lastActivityAt: time.Now()}
	if err := s.opts.SetAutoawayMode("idle"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.opts.AutoawayMinutes = 10

	s.evaluateAutoaway(time.Now())

	if s.autoAwayActive || s.selfPresence != Online {
		t.Fatalf("expected revert to Online on fresh activity, got active=%v presence=%v", s.autoAwayActive, s.selfPresence)
	}
}

func TestStatusDefaultsToZeroValue(t *testing.T) {
	s := &Session{}
	if s.Status() != Disconnected {
		t.Fatalf("expected zero-value Session to report Disconnected, got %v", s.Status())
	}
}
