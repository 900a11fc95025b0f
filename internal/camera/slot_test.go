package camera

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestSlotEmptyRead(t *testing.T) {
	slot := NewSlot()
	if _, ok := slot.Read(); ok {
		t.Fatal("expected empty slot to report no frame")
	}
}

func TestSlotPublishReplacesFrame(t *testing.T) {
	slot := NewSlot()
	first := time.Now()
	slot.Publish([]byte("one"), first)
	slot.Publish([]byte("two"), first.Add(time.Second))

	frame, ok := slot.Read()
	if !ok {
		t.Fatal("expected a frame")
	}
	if string(frame.Data) != "two" {
		t.Fatalf("frame data = %q, want latest publish", frame.Data)
	}
	if !frame.CapturedAt.Equal(first.Add(time.Second)) {
		t.Fatalf("captured at = %v", frame.CapturedAt)
	}
}

func TestSlotClear(t *testing.T) {
	slot := NewSlot()
	slot.Publish([]byte("frame"), time.Now())
	slot.Clear()
	if _, ok := slot.Read(); ok {
		t.Fatal("expected cleared slot to report no frame")
	}
}

func TestSlotConcurrentPublishRead(t *testing.T) {
	// Payloads are tagged with an index that must always match the
	// frame's capture time; a reader observing a mismatched pair means
	// Publish tore.
	slot := NewSlot()
	base := time.Unix(0, 0)
	const publishes = 2000

	done := make(chan struct{})
	var readers sync.WaitGroup
	for r := 0; r < 4; r++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				frame, ok := slot.Read()
				if !ok {
					continue
				}
				index := int(frame.CapturedAt.Sub(base) / time.Millisecond)
				want := fmt.Sprintf("frame-%06d", index)
				if string(frame.Data) != want {
					t.Errorf("frame data = %q, want %q for capture time %v",
						frame.Data, want, frame.CapturedAt)
					return
				}
			}
		}()
	}

	for i := 0; i < publishes; i++ {
		slot.Publish([]byte(fmt.Sprintf("frame-%06d", i)), base.Add(time.Duration(i)*time.Millisecond))
	}
	close(done)
	readers.Wait()
}

func TestSlotFreshFrame(t *testing.T) {
	slot := NewSlot()
	now := time.Now()
	slot.Publish([]byte("frame"), now.Add(-2*time.Second))

	if _, ok := slot.FreshFrame(now, time.Second); ok {
		t.Fatal("expected two-second-old frame to be stale at one-second threshold")
	}
	if _, ok := slot.FreshFrame(now, 3*time.Second); !ok {
		t.Fatal("expected frame to be fresh at three-second threshold")
	}
}
