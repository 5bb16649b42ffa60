package authflow

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Event records one observable step of the auth flow: a submit, a
// rejection, a lockout transition, a session change. Events are diagnostic
// and never carry credentials or tokens.
type Event struct {
	Timestamp  time.Time         `json:"timestamp"`
	EventType  string            `json:"event_type"`
	Identifier string            `json:"identifier,omitempty"`
	Tab        string            `json:"tab,omitempty"`
	Success    bool              `json:"success"`
	Error      string            `json:"error,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Event types emitted by the controller.
const (
	EventLoginAttempt    = "login.attempt"
	EventLoginSuccess    = "login.success"
	EventLoginRejected   = "login.rejected"
	EventLoginUnverified = "login.unverified"
	EventLockoutStarted  = "lockout.started"
	EventLockoutCleared  = "lockout.cleared"
	EventSignupAttempt   = "signup.attempt"
	EventSignupSuccess   = "signup.success"
	EventSignupRejected  = "signup.rejected"
	EventPasswordForgot  = "password.forgot"
	EventPasswordReset   = "password.reset"
	EventSessionSaved    = "session.saved"
	EventSessionCleared  = "session.cleared"
	EventSignOut         = "signout"
)

type EventSink interface {
	Emit(ctx context.Context, event Event)
}

type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, Event) {}

type ChannelSink struct {
	events chan Event
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan Event, buffer),
	}
}

func (s *ChannelSink) Emit(ctx context.Context, event Event) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan Event {
	return s.events
}

type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

func (s *JSONWriterSink) Emit(ctx context.Context, event Event) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}
