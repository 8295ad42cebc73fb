package telemetry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"todo-api/internal/telemetry/domain"
)

// mockEventEmitter implements EventEmitter for tests.
type mockEventEmitter struct {
	mu      sync.Mutex
	events  []*domain.Event
	emitErr error
	delay   time.Duration
	done    chan struct{}
}

func (m *mockEventEmitter) Emit(ctx context.Context, event *domain.Event) error {
	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.delay):
		}
	}
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
	if m.done != nil {
		m.done <- struct{}{}
	}
	return m.emitErr
}

func (m *mockEventEmitter) getEvents() []*domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events
}

func waitN(t *testing.T, done chan struct{}, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for emit %d of %d", i+1, n)
		}
	}
}

func TestEmitAsync_NilEmitter(t *testing.T) {
	EmitAsync(nil, context.Background(), &domain.Event{EventType: "test"})
}

func TestEmitAsync_NilEvent(t *testing.T) {
	emitter := &mockEventEmitter{}
	EmitAsync(emitter, context.Background(), nil)
	time.Sleep(10 * time.Millisecond)
	if n := len(emitter.getEvents()); n != 0 {
		t.Errorf("expected 0 events, got %d", n)
	}
}

func TestEmitAsync_SuccessfulEmit(t *testing.T) {
	emitter := &mockEventEmitter{done: make(chan struct{}, 1)}
	EmitAsync(emitter, context.Background(), &domain.Event{AccountID: 7, EventType: "http_request", Source: "http_middleware"})
	waitN(t, emitter.done, 1)

	events := emitter.getEvents()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].AccountID != 7 || events[0].EventType != "http_request" {
		t.Errorf("event = %+v", events[0])
	}
}

func TestEmitAsync_UsesBackgroundContext(t *testing.T) {
	emitter := &mockEventEmitter{done: make(chan struct{}, 1)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	EmitAsync(emitter, ctx, &domain.Event{EventType: "test"})
	waitN(t, emitter.done, 1)
}

func TestEmitAsync_ConcurrentAccess(t *testing.T) {
	emitter := &mockEventEmitter{done: make(chan struct{}, 10)}
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			EmitAsync(emitter, context.Background(), &domain.Event{EventType: "test"})
		}()
	}
	wg.Wait()
	waitN(t, emitter.done, 10)

	if n := len(emitter.getEvents()); n != 10 {
		t.Errorf("expected 10 events, got %d", n)
	}
}

func TestFanout(t *testing.T) {
	if Fanout() != nil {
		t.Error("Fanout() should be nil")
	}
	if Fanout(nil, nil) != nil {
		t.Error("Fanout(nil, nil) should be nil")
	}
	single := &mockEventEmitter{}
	if Fanout(nil, single) != EventEmitter(single) {
		t.Error("Fanout with one emitter should return it unchanged")
	}

	a := &mockEventEmitter{emitErr: errors.New("kafka down")}
	b := &mockEventEmitter{}
	err := Fanout(a, b).Emit(context.Background(), &domain.Event{EventType: "x"})
	if err == nil {
		t.Error("Fanout should surface the failing emitter's error")
	}
	if len(a.getEvents()) != 1 || len(b.getEvents()) != 1 {
		t.Error("every emitter should receive the event even when one fails")
	}
}

func TestDrainDuration(t *testing.T) {
	if d := DrainDuration(nil); d != 0 {
		t.Errorf("DrainDuration(nil) = %v, want 0", d)
	}
	if d := DrainDuration(Fanout()); d != 0 {
		t.Errorf("DrainDuration(Fanout()) = %v, want 0", d)
	}
	if d := DrainDuration(&mockEventEmitter{}); d != ShutdownDrainDuration {
		t.Errorf("DrainDuration(emitter) = %v, want %v", d, ShutdownDrainDuration)
	}
}
