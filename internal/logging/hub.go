package logging

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Event is a structured log line retained by the Hub.
type Event struct {
	Sequence  uint64            `json:"seq"`
	Timestamp time.Time         `json:"ts"`
	Level     string            `json:"level"`
	Message   string            `json:"msg"`
	Component string            `json:"component,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// Hub stores recent log events in a bounded ring and wakes waiters when new
// events arrive. It backs /api/logs and the IPC LogTail call.
type Hub struct {
	mu       sync.Mutex
	cond     *sync.Cond
	capacity int
	buffer   []Event
	nextSeq  uint64
}

// DefaultHubCapacity is the event retention used by the daemon.
const DefaultHubCapacity = 2048

// NewHub constructs a bounded in-memory log buffer.
func NewHub(capacity int) *Hub {
	if capacity <= 0 {
		capacity = 512
	}
	h := &Hub{capacity: capacity}
	h.cond = sync.NewCond(&h.mu)
	return h
}

// Publish appends a new event, evicting the oldest when at capacity.
func (h *Hub) Publish(evt Event) {
	if h == nil {
		return
	}
	h.mu.Lock()
	h.nextSeq++
	evt.Sequence = h.nextSeq
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	if len(h.buffer) == h.capacity {
		copy(h.buffer, h.buffer[1:])
		h.buffer = h.buffer[:h.capacity-1]
	}
	h.buffer = append(h.buffer, evt)
	h.cond.Broadcast()
	h.mu.Unlock()
}

// Fetch returns events with sequence greater than since. When wait is true it
// blocks until at least one event is available or the context ends.
func (h *Hub) Fetch(ctx context.Context, since uint64, limit int, wait bool) ([]Event, uint64, error) {
	if h == nil {
		return nil, since, nil
	}
	if limit <= 0 || limit > h.capacity {
		limit = h.capacity
	}

	cancelWait := make(chan struct{})
	if wait && ctx != nil && ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				h.cond.Broadcast()
			case <-cancelWait:
			}
		}()
	}
	defer close(cancelWait)

	h.mu.Lock()
	defer h.mu.Unlock()
	for {
		events, next := h.snapshotLocked(since, limit)
		if len(events) > 0 || !wait {
			return events, next, nil
		}
		if ctx != nil && ctx.Err() != nil {
			return nil, since, ctx.Err()
		}
		h.cond.Wait()
	}
}

// Tail returns up to limit of the most recent events and the latest sequence.
func (h *Hub) Tail(limit int) ([]Event, uint64) {
	if h == nil {
		return nil, 0
	}
	if limit <= 0 || limit > h.capacity {
		limit = h.capacity
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	start := len(h.buffer) - limit
	if start < 0 {
		start = 0
	}
	events := append([]Event(nil), h.buffer[start:]...)
	return events, h.nextSeq
}

func (h *Hub) snapshotLocked(since uint64, limit int) ([]Event, uint64) {
	var events []Event
	next := since
	for _, evt := range h.buffer {
		if evt.Sequence <= since {
			continue
		}
		events = append(events, evt)
		next = evt.Sequence
		if len(events) == limit {
			break
		}
	}
	if next < since {
		next = since
	}
	return events, next
}

// hubHandler mirrors every record into the hub while delegating to the real
// output handler.
type hubHandler struct {
	inner slog.Handler
	hub   *Hub
	attrs []slog.Attr
}

func newHubHandler(inner slog.Handler, hub *Hub) slog.Handler {
	return &hubHandler{inner: inner, hub: hub}
}

func (h *hubHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *hubHandler) Handle(ctx context.Context, record slog.Record) error {
	evt := Event{
		Timestamp: record.Time.UTC(),
		Level:     levelLabel(record.Level),
		Message:   record.Message,
	}
	collect := func(attr slog.Attr) {
		attr.Value = attr.Value.Resolve()
		if attr.Value.Kind() == slog.KindGroup {
			for _, nested := range attr.Value.Group() {
				if nested.Key == "" {
					continue
				}
				if evt.Fields == nil {
					evt.Fields = make(map[string]string)
				}
				evt.Fields[nested.Key] = formatValue(nested.Value)
			}
			return
		}
		if attr.Key == FieldComponent {
			evt.Component = attr.Value.String()
			return
		}
		if evt.Fields == nil {
			evt.Fields = make(map[string]string)
		}
		evt.Fields[attr.Key] = formatValue(attr.Value)
	}
	for _, attr := range h.attrs {
		collect(attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		collect(attr)
		return true
	})
	h.hub.Publish(evt)
	return h.inner.Handle(ctx, record)
}

func (h *hubHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &hubHandler{
		inner: h.inner.WithAttrs(attrs),
		hub:   h.hub,
		attrs: append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func (h *hubHandler) WithGroup(name string) slog.Handler {
	return &hubHandler{inner: h.inner.WithGroup(name), hub: h.hub, attrs: h.attrs}
}
