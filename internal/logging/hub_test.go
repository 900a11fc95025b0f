package logging

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

func TestHubEvictsOldestAtCapacity(t *testing.T) {
	hub := NewHub(3)
	for i := 0; i < 5; i++ {
		hub.Publish(Event{Message: "m"})
	}
	events, next := hub.Tail(10)
	if len(events) != 3 {
		t.Fatalf("expected 3 retained events, got %d", len(events))
	}
	if events[0].Sequence != 3 || next != 5 {
		t.Fatalf("expected oldest seq 3 and next 5, got %d and %d", events[0].Sequence, next)
	}
}

func TestHubFetchSince(t *testing.T) {
	hub := NewHub(16)
	for i := 0; i < 4; i++ {
		hub.Publish(Event{Message: "m"})
	}
	events, next, err := hub.Fetch(context.Background(), 2, 10, false)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(events) != 2 || events[0].Sequence != 3 {
		t.Fatalf("expected events 3..4, got %+v", events)
	}
	if next != 4 {
		t.Fatalf("expected cursor 4, got %d", next)
	}
}

func TestHubFetchWaitCancelled(t *testing.T) {
	hub := NewHub(16)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, _, err := hub.Fetch(ctx, 0, 10, true)
	if err == nil {
		t.Fatal("expected context error from waiting fetch with no events")
	}
}

func TestHubFetchWaitWakesOnPublish(t *testing.T) {
	hub := NewHub(16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		events, _, err := hub.Fetch(context.Background(), 0, 10, true)
		if err != nil || len(events) != 1 {
			t.Errorf("fetch after publish: events=%d err=%v", len(events), err)
		}
	}()

	time.Sleep(20 * time.Millisecond)
	hub.Publish(Event{Message: "wake"})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("waiting fetch never woke up")
	}
}

func TestHubHandlerCapturesComponentAndFields(t *testing.T) {
	hub := NewHub(16)
	lvl := new(slog.LevelVar)
	logger := slog.New(newHubHandler(newConsoleHandler(io.Discard, lvl), hub))

	NewComponentLogger(logger, "relay").Info("command sent", String(FieldDirection, "up"))

	events, _ := hub.Tail(1)
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	evt := events[0]
	if evt.Component != "relay" {
		t.Fatalf("component = %q, want relay", evt.Component)
	}
	if evt.Fields[FieldDirection] != "up" {
		t.Fatalf("direction field = %q, want up", evt.Fields[FieldDirection])
	}
}
