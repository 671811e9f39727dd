// Package speech delivers spoken feedback off the pipeline thread. Messages
// flow through a single-slot mailbox with replace-latest semantics, so
// speech lags the pipeline by at most one message and never applies
// backpressure.
package speech

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// #region engine

// Engine synthesizes one utterance. Implementations must be safe to call
// from the speaker's worker goroutine.
type Engine interface {
	Speak(ctx context.Context, text string) error
}

// NopEngine discards every message. Used when speech is disabled and in
// tests.
type NopEngine struct{}

// Speak implements Engine.
func (NopEngine) Speak(context.Context, string) error { return nil }

// #endregion engine

// #region speaker

// message is what travels through the mailbox; quit is the shutdown
// sentinel.
type message struct {
	text string
	quit bool
}

// defaultCloseTimeout bounds how long Close waits for the worker to drain.
const defaultCloseTimeout = 3 * time.Second

// Speaker owns one background worker that hands messages to an Engine.
// Say never blocks; Close is idempotent.
type Speaker struct {
	engine  Engine
	mailbox chan message
	done    chan struct{}
	once    sync.Once
	minGap  time.Duration
	logger  *slog.Logger
}

// NewSpeaker starts the worker. minGap is the minimum spacing between two
// different spoken messages; identical consecutive messages are always
// suppressed. logger may be nil.
func NewSpeaker(engine Engine, minGap time.Duration, logger *slog.Logger) *Speaker {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Speaker{
		engine:  engine,
		mailbox: make(chan message, 1),
		done:    make(chan struct{}),
		minGap:  minGap,
		logger:  logger,
	}
	go s.worker()
	return s
}

// Say enqueues text for delivery. When the slot is occupied the pending
// message is dropped in favor of the new one. Empty text is ignored.
func (s *Speaker) Say(text string) {
	if text == "" {
		return
	}
	s.post(message{text: text})
}

// post places msg in the mailbox, displacing whatever is pending. The
// drain-then-send loop terminates because the pipeline thread and Close are
// the only producers.
func (s *Speaker) post(msg message) {
	for {
		select {
		case s.mailbox <- msg:
			return
		default:
		}
		select {
		case <-s.mailbox:
		default:
		}
	}
}

// Close signals the worker with the quit sentinel and joins it with a
// bounded timeout. Safe to call more than once.
func (s *Speaker) Close() {
	s.once.Do(func() {
		s.post(message{quit: true})
		select {
		case <-s.done:
		case <-time.After(defaultCloseTimeout):
			s.logger.Warn("speech worker did not stop before timeout")
		}
	})
}

// worker consumes the mailbox until the quit sentinel arrives. Delivery
// failures are logged and swallowed; they never stop the worker.
func (s *Speaker) worker() {
	defer close(s.done)

	var lastText string
	var lastAt time.Time

	for msg := range s.mailbox {
		if msg.quit {
			return
		}
		if msg.text == lastText {
			continue
		}
		if !lastAt.IsZero() && time.Since(lastAt) < s.minGap {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := s.engine.Speak(ctx, msg.text)
		cancel()
		if err != nil {
			s.logger.Debug("speech delivery failed", "error", err)
			continue
		}
		lastText = msg.text
		lastAt = time.Now()
	}
}

// #endregion speaker
