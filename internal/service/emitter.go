package service

import (
	"context"
	"log"
	"sort"
	"sync"

	"composer/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// EventEmitter: decouples the composer from its host
// ─────────────────────────────────────────────────────────────

// EventEmitter is an interface for emitting composer events to the host.
// The composer never knows who listens; hosts plug in an EventBus, the MCP
// layer or a LogEmitter.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// MockEmitter is a test-friendly EventEmitter that records all calls.
type MockEmitter struct {
	mu     sync.Mutex
	Events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}

// Count returns how many times event was emitted.
func (m *MockEmitter) Count(event string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Events {
		if e.Event == event {
			n++
		}
	}
	return n
}

// Named returns the recorded emissions of event in order.
func (m *MockEmitter) Named(event string) []EmittedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []EmittedEvent
	for _, e := range m.Events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

// Names returns the names of all recorded emissions in order.
func (m *MockEmitter) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Events))
	for i, e := range m.Events {
		out[i] = e.Event
	}
	return out
}

// Reset drops everything recorded so far.
func (m *MockEmitter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = nil
}

// ─────────────────────────────────────────────────────────────
// EventBus: subscription surface for embedding hosts
// ─────────────────────────────────────────────────────────────

// EventHandler receives one event emission.
type EventHandler func(event string, data any)

// EventBus fans emissions out to handlers subscribed by event name.
// Handlers subscribed with OnAny receive every event.
type EventBus struct {
	mu       sync.RWMutex
	next     int
	handlers map[string]map[int]EventHandler
}

const anyEvent = "*"

// NewEventBus creates an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{handlers: make(map[string]map[int]EventHandler)}
}

// On subscribes fn to event and returns its unsubscribe func.
func (b *EventBus) On(event string, fn EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	id := b.next
	if b.handlers[event] == nil {
		b.handlers[event] = make(map[int]EventHandler)
	}
	b.handlers[event][id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[event], id)
	}
}

// OnAny subscribes fn to every event.
func (b *EventBus) OnAny(fn EventHandler) func() {
	return b.On(anyEvent, fn)
}

// Emit calls the handlers of event, then the catch-all handlers, each in
// subscription order. Handlers run outside the bus lock and may subscribe
// or unsubscribe.
func (b *EventBus) Emit(_ context.Context, event string, data any) {
	for _, fn := range b.snapshot(event) {
		fn(event, data)
	}
	for _, fn := range b.snapshot(anyEvent) {
		fn(event, data)
	}
}

func (b *EventBus) snapshot(event string) []EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	subs := b.handlers[event]
	ids := make([]int, 0, len(subs))
	for id := range subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]EventHandler, len(ids))
	for i, id := range ids {
		out[i] = subs[id]
	}
	return out
}

// LogEmitter writes every event to the standard logger. Render updates are
// skipped unless Verbose is set since drags produce one per pointer move.
type LogEmitter struct {
	Verbose bool
}

func (l LogEmitter) Emit(_ context.Context, event string, data any) {
	if event == domain.EventRenderUpdate && !l.Verbose {
		return
	}
	log.Printf("[EVENT] %s %+v", event, data)
}

// MultiEmitter forwards each emission to every emitter in order.
type MultiEmitter []EventEmitter

func (m MultiEmitter) Emit(ctx context.Context, event string, data any) {
	for _, e := range m {
		if e != nil {
			e.Emit(ctx, event, data)
		}
	}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, string, any) {}
