package speech

import (
	"context"
	"sync"
	"testing"
	"time"
)

// stubEngine records utterances. When gated, Speak signals entry on started
// and then blocks until the test releases it.
type stubEngine struct {
	mu      sync.Mutex
	spoken  []string
	started chan struct{}
	gate    chan struct{}
}

func (e *stubEngine) Speak(_ context.Context, text string) error {
	if e.started != nil {
		e.started <- struct{}{}
		<-e.gate
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.spoken = append(e.spoken, text)
	return nil
}

func (e *stubEngine) got() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.spoken))
	copy(out, e.spoken)
	return out
}

func TestReplaceLatestDropsStaleMessages(t *testing.T) {
	engine := &stubEngine{
		started: make(chan struct{}),
		gate:    make(chan struct{}),
	}
	s := NewSpeaker(engine, 0, nil)

	s.Say("first")
	<-engine.started // worker is mid-delivery

	// Two messages arrive while the worker is busy; only the latest survives.
	s.Say("stale")
	s.Say("latest")
	engine.gate <- struct{}{}

	<-engine.started // worker picked up the surviving message
	engine.started = nil
	engine.gate <- struct{}{}

	s.Close()

	got := engine.got()
	if len(got) != 2 || got[0] != "first" || got[1] != "latest" {
		t.Fatalf("expected [first latest], got %v", got)
	}
}

func TestSayNeverBlocks(t *testing.T) {
	engine := &stubEngine{
		started: make(chan struct{}),
		gate:    make(chan struct{}),
	}
	s := NewSpeaker(engine, 0, nil)

	s.Say("busy")
	<-engine.started

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			s.Say("x")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Say blocked while the worker was busy")
	}

	engine.started = nil
	engine.gate <- struct{}{}
	s.Close()
}

func TestCloseIsIdempotent(t *testing.T) {
	s := NewSpeaker(NopEngine{}, 0, nil)
	s.Close()
	s.Close()
}

func TestEmptyTextIgnored(t *testing.T) {
	engine := &stubEngine{}
	s := NewSpeaker(engine, 0, nil)
	s.Say("")
	s.Close()
	if got := engine.got(); len(got) != 0 {
		t.Fatalf("expected no deliveries, got %v", got)
	}
}

func TestIdenticalConsecutiveMessagesDeduped(t *testing.T) {
	engine := &stubEngine{
		started: make(chan struct{}),
		gate:    make(chan struct{}),
	}
	s := NewSpeaker(engine, 0, nil)

	s.Say("again")
	<-engine.started
	engine.started = nil
	engine.gate <- struct{}{}

	s.Say("again")
	time.Sleep(50 * time.Millisecond)
	s.Close()

	if got := engine.got(); len(got) != 1 || got[0] != "again" {
		t.Fatalf("expected single delivery, got %v", got)
	}
}

func TestMinGapSuppressesRapidDistinctMessages(t *testing.T) {
	engine := &stubEngine{
		started: make(chan struct{}),
		gate:    make(chan struct{}),
	}
	s := NewSpeaker(engine, time.Hour, nil)

	s.Say("a")
	<-engine.started
	engine.started = nil
	engine.gate <- struct{}{}

	s.Say("b")
	time.Sleep(50 * time.Millisecond)
	s.Close()

	if got := engine.got(); len(got) != 1 || got[0] != "a" {
		t.Fatalf("expected only the first message, got %v", got)
	}
}
