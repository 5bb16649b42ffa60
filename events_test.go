package authflow

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, Event) {
	s.count.Add(1)
}

type blockingSink struct {
	release chan struct{}
}

func (s *blockingSink) Emit(context.Context, Event) {
	<-s.release
}

func TestDispatcherDeliversToSink(t *testing.T) {
	sink := &countingSink{}
	d := newEventDispatcher(EventsConfig{Enabled: true, BufferSize: 16}, sink)

	for i := 0; i < 5; i++ {
		d.Emit(context.Background(), Event{EventType: EventLoginAttempt})
	}
	d.Close()

	if got := sink.count.Load(); got != 5 {
		t.Fatalf("delivered = %d, want 5", got)
	}
}

func TestDispatcherDisabledIsNil(t *testing.T) {
	d := newEventDispatcher(EventsConfig{Enabled: false}, &countingSink{})
	if d != nil {
		t.Fatal("disabled dispatcher not nil")
	}
	// All methods must be safe on nil.
	d.Emit(context.Background(), Event{})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher reports drops")
	}
}

func TestDispatcherDropIfFull(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{})}
	d := newEventDispatcher(EventsConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	// First event occupies the run loop, second fills the buffer, the rest
	// must be dropped without blocking.
	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), Event{EventType: EventLoginAttempt})
	}

	deadline := time.Now().Add(time.Second)
	for d.Dropped() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no events dropped with a full buffer")
		}
		time.Sleep(time.Millisecond)
	}

	close(sink.release)
	d.Close()
}

func TestDispatcherCloseDrainsBuffer(t *testing.T) {
	sink := &countingSink{}
	d := newEventDispatcher(EventsConfig{Enabled: true, BufferSize: 64}, sink)

	for i := 0; i < 32; i++ {
		d.Emit(context.Background(), Event{EventType: EventSignupAttempt})
	}
	d.Close()

	if got := sink.count.Load(); got != 32 {
		t.Fatalf("delivered = %d, want 32 (close must drain)", got)
	}

	// Emits after close are discarded.
	d.Emit(context.Background(), Event{})
	if got := sink.count.Load(); got != 32 {
		t.Fatalf("emit after close delivered: %d", got)
	}
}

func TestChannelSinkCarriesEvents(t *testing.T) {
	sink := NewChannelSink(4)
	sink.Emit(context.Background(), Event{EventType: EventLoginSuccess, Identifier: "demo@planner.com"})

	select {
	case ev := <-sink.Events():
		if ev.EventType != EventLoginSuccess || ev.Identifier != "demo@planner.com" {
			t.Fatalf("unexpected event: %+v", ev)
		}
	default:
		t.Fatal("no event buffered")
	}
}

func TestJSONWriterSinkWritesLines(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)
	sink.Emit(context.Background(), Event{EventType: EventSignOut, Success: true})

	line := strings.TrimSpace(buf.String())
	var ev Event
	if err := json.Unmarshal([]byte(line), &ev); err != nil {
		t.Fatalf("output not JSON: %v", err)
	}
	if ev.EventType != EventSignOut || !ev.Success {
		t.Fatalf("round trip lost fields: %+v", ev)
	}
}

func TestControllerEmitsLoginEvents(t *testing.T) {
	stub := &plannerStub{password: "Demo1234!"}
	sink := NewChannelSink(16)
	c, _ := newTestController(t, stub, func(b *Builder) {
		b.config.Events = EventsConfig{Enabled: true, BufferSize: 16}
		b.WithEventSink(sink)
	})

	if _, err := c.SubmitLogin(context.Background(), Credentials{Identifier: "demo@planner.com", Password: "Demo1234!"}, false); err != nil {
		t.Fatalf("SubmitLogin: %v", err)
	}

	var types []string
	timeout := time.After(2 * time.Second)
	for len(types) < 3 {
		select {
		case ev := <-sink.Events():
			types = append(types, ev.EventType)
		case <-timeout:
			t.Fatalf("only saw events %v", types)
		}
	}

	want := map[string]bool{EventLoginAttempt: true, EventSessionSaved: true, EventLoginSuccess: true}
	for _, typ := range types {
		delete(want, typ)
	}
	if len(want) != 0 {
		t.Fatalf("missing events: %v (saw %v)", want, types)
	}
}
