package camera

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeDevice struct {
	mu       sync.Mutex
	frames   [][]byte
	next     int
	readErr  error
	closed   atomic.Int32
	readGate chan struct{}
}

func (d *fakeDevice) ReadJPEG() ([]byte, error) {
	if d.readGate != nil {
		<-d.readGate
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.readErr != nil {
		return nil, d.readErr
	}
	if len(d.frames) == 0 {
		return []byte("frame"), nil
	}
	frame := d.frames[d.next%len(d.frames)]
	d.next++
	return frame, nil
}

func (d *fakeDevice) Close() error {
	d.closed.Add(1)
	return nil
}

func (d *fakeDevice) failReads(err error) {
	d.mu.Lock()
	d.readErr = err
	d.mu.Unlock()
}

type fakeProvider struct {
	device  *fakeDevice
	openErr error
	opens   atomic.Int32
}

func (p *fakeProvider) Available() bool { return true }

func (p *fakeProvider) Reason() string { return "" }

func (p *fakeProvider) Open(Settings) (Device, error) {
	p.opens.Add(1)
	if p.openErr != nil {
		return nil, p.openErr
	}
	return p.device, nil
}

func waitFor(t *testing.T, timeout time.Duration, check func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if check() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func newTestProducer(provider Provider, slot *Slot) *Producer {
	return NewProducer(provider, slot, Settings{Device: "/dev/video0"}, 0, nil)
}

func TestProducerStartPublishesFrames(t *testing.T) {
	slot := NewSlot()
	provider := &fakeProvider{device: &fakeDevice{frames: [][]byte{[]byte("jpeg")}}}
	producer := newTestProducer(provider, slot)

	if err := producer.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer producer.Stop()

	if got := producer.State(); got != StateRunning {
		t.Fatalf("state = %q, want running", got)
	}
	waitFor(t, time.Second, func() bool {
		frame, ok := slot.Read()
		return ok && string(frame.Data) == "jpeg"
	})
}

func TestProducerStartIsIdempotent(t *testing.T) {
	provider := &fakeProvider{device: &fakeDevice{}}
	producer := newTestProducer(provider, NewSlot())

	if err := producer.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer producer.Stop()
	if err := producer.Start(context.Background()); err != nil {
		t.Fatalf("second start: %v", err)
	}
	if got := provider.opens.Load(); got != 1 {
		t.Fatalf("device opened %d times, want 1", got)
	}
}

func TestProducerStartOpenError(t *testing.T) {
	provider := &fakeProvider{openErr: errors.New("no such device")}
	producer := newTestProducer(provider, NewSlot())

	if err := producer.Start(context.Background()); err == nil {
		t.Fatal("expected start to fail")
	}
	if got := producer.State(); got != StateStopped {
		t.Fatalf("state after failed start = %q, want stopped", got)
	}
}

func TestProducerStopClosesDeviceAndClearsSlot(t *testing.T) {
	slot := NewSlot()
	device := &fakeDevice{}
	producer := newTestProducer(&fakeProvider{device: device}, slot)

	if err := producer.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitFor(t, time.Second, func() bool {
		_, ok := slot.Read()
		return ok
	})

	if err := producer.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if got := producer.State(); got != StateStopped {
		t.Fatalf("state = %q, want stopped", got)
	}
	if device.closed.Load() == 0 {
		t.Fatal("expected device to be closed")
	}
	if _, ok := slot.Read(); ok {
		t.Fatal("expected slot to be cleared after stop")
	}
	// Second stop is a no-op.
	if err := producer.Stop(); err != nil {
		t.Fatalf("second stop: %v", err)
	}
}

func TestProducerFaultsAfterRepeatedReadFailures(t *testing.T) {
	slot := NewSlot()
	device := &fakeDevice{}
	producer := newTestProducer(&fakeProvider{device: device}, slot)

	if err := producer.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitFor(t, time.Second, func() bool {
		_, ok := slot.Read()
		return ok
	})

	device.failReads(errors.New("device yanked"))
	waitFor(t, 3*time.Second, func() bool {
		return producer.State() == StateStopped
	})
	if device.closed.Load() == 0 {
		t.Fatal("expected faulted device to be closed")
	}
	if _, ok := slot.Read(); ok {
		t.Fatal("expected slot to be cleared after fault")
	}
}

func TestProducerStopDuringWarmupLandsStopped(t *testing.T) {
	device := &fakeDevice{}
	producer := NewProducer(&fakeProvider{device: device}, NewSlot(), Settings{Device: "/dev/video0"}, time.Minute, nil)

	errCh := make(chan error, 1)
	go func() { errCh <- producer.Start(context.Background()) }()
	waitFor(t, time.Second, func() bool {
		return producer.State() == StateStarting
	})

	if err := producer.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	select {
	case err := <-errCh:
		if err == nil {
			t.Fatal("expected start to report the aborted warm-up")
		}
	case <-time.After(time.Second):
		t.Fatal("start did not return after stop")
	}
	if got := producer.State(); got != StateStopped {
		t.Fatalf("state = %q, want stopped", got)
	}
	if device.closed.Load() == 0 {
		t.Fatal("expected device released after aborted start")
	}
}

func TestProducerStopWithWedgedReadIsBounded(t *testing.T) {
	slot := NewSlot()
	gate := make(chan struct{})
	device := &fakeDevice{readGate: gate}
	producer := newTestProducer(&fakeProvider{device: device}, slot)

	if err := producer.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	// Give the loop time to block inside the gated read.
	time.Sleep(20 * time.Millisecond)

	second := make(chan error, 1)
	go func() {
		// Lands while the first Stop's teardown is in flight and must
		// join it instead of returning early.
		time.Sleep(50 * time.Millisecond)
		second <- producer.Stop()
	}()

	begin := time.Now()
	if err := producer.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if elapsed := time.Since(begin); elapsed > stopJoinTimeout+time.Second {
		t.Fatalf("stop took %v, want <= %v", elapsed, stopJoinTimeout)
	}
	if got := producer.State(); got != StateStopped {
		t.Fatalf("state = %q, want stopped", got)
	}
	if device.closed.Load() == 0 {
		t.Fatal("expected device closed despite the wedged read")
	}

	select {
	case err := <-second:
		if err != nil {
			t.Fatalf("concurrent stop: %v", err)
		}
	case <-time.After(stopJoinTimeout + 2*time.Second):
		t.Fatal("concurrent stop did not return")
	}
	close(gate)
}

func TestProducerFaultInvokesCallback(t *testing.T) {
	slot := NewSlot()
	device := &fakeDevice{}
	producer := newTestProducer(&fakeProvider{device: device}, slot)

	faults := make(chan string, 1)
	producer.OnFault(func(reason string) { faults <- reason })

	if err := producer.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitFor(t, time.Second, func() bool {
		_, ok := slot.Read()
		return ok
	})

	device.failReads(errors.New("device yanked"))
	select {
	case reason := <-faults:
		if !strings.Contains(reason, "device yanked") {
			t.Fatalf("fault reason = %q", reason)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("fault callback never fired")
	}
	if got := producer.State(); got != StateStopped {
		t.Fatalf("state = %q, want stopped", got)
	}
}

func TestProducerWarmupCancelledByContext(t *testing.T) {
	device := &fakeDevice{}
	producer := NewProducer(&fakeProvider{device: device}, NewSlot(), Settings{Device: "/dev/video0"}, time.Minute, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- producer.Start(ctx) }()

	waitFor(t, time.Second, func() bool {
		return producer.State() == StateStarting
	})
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("start error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("start did not return after cancel")
	}
	if device.closed.Load() == 0 {
		t.Fatal("expected device closed when warm-up was cancelled")
	}
	if got := producer.State(); got != StateStopped {
		t.Fatalf("state = %q, want stopped", got)
	}
}
