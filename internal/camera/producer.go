package camera

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"rovercam/internal/logging"
)

// State labels one phase of the producer lifecycle.
type State string

const (
	StateStopped  State = "stopped"
	StateStarting State = "starting"
	StateRunning  State = "running"
	StateStopping State = "stopping"
)

const (
	// After this many consecutive failed reads the device is treated
	// as gone and the producer faults to stopped.
	maxConsecutiveReadFailures = 5
	readFailureBackoff         = 100 * time.Millisecond
	stopJoinTimeout            = 3 * time.Second
)

// Producer owns a capture device and feeds the shared frame slot. At
// most one capture goroutine runs at a time; Start and Stop move the
// producer through stopped -> starting -> running -> stopping ->
// stopped and never leave a device open in the stopped state.
type Producer struct {
	provider Provider
	slot     *Slot
	settings Settings
	warmup   time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	state  State
	device Device
	stop   chan struct{}
	done   chan struct{}
	// startCancel aborts an in-flight Start; startDone closes when that
	// Start has settled either way. stopDone closes when an in-flight
	// teardown finishes, so concurrent Stop callers can join it.
	startCancel chan struct{}
	startDone   chan struct{}
	stopDone    chan struct{}
	onFault     func(reason string)
}

// NewProducer wires a producer around the provider and slot. warmup is
// how long the sensor settles after open before frames publish.
func NewProducer(provider Provider, slot *Slot, settings Settings, warmup time.Duration, logger *slog.Logger) *Producer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Producer{
		provider: provider,
		slot:     slot,
		settings: settings,
		warmup:   warmup,
		logger:   logging.NewComponentLogger(logger, "camera"),
		state:    StateStopped,
	}
}

// OnFault registers a callback invoked when the capture loop gives up
// after repeated read failures. Set it before Start; the callback runs
// on the capture goroutine.
func (p *Producer) OnFault(fn func(reason string)) {
	p.mu.Lock()
	p.onFault = fn
	p.mu.Unlock()
}

// State returns the current lifecycle state.
func (p *Producer) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Running reports whether the capture loop is active.
func (p *Producer) Running() bool {
	return p.State() == StateRunning
}

// Start opens the device, waits out the warm-up, and launches the
// capture loop. Calling Start while already starting or running is a
// no-op. ctx only bounds startup, not the loop itself.
func (p *Producer) Start(ctx context.Context) error {
	p.mu.Lock()
	switch p.state {
	case StateStarting, StateRunning:
		p.mu.Unlock()
		return nil
	case StateStopping:
		p.mu.Unlock()
		return fmt.Errorf("camera producer is stopping")
	}
	cancel := make(chan struct{})
	settled := make(chan struct{})
	p.startCancel = cancel
	p.startDone = settled
	p.state = StateStarting
	p.mu.Unlock()

	defer close(settled)

	device, err := p.provider.Open(p.settings)
	if err != nil {
		p.abortStart(nil)
		return fmt.Errorf("start camera: %w", err)
	}

	if p.warmup > 0 {
		p.logger.Info("warming up camera", logging.Duration("warmup", p.warmup))
		select {
		case <-time.After(p.warmup):
		case <-cancel:
			p.abortStart(device)
			return fmt.Errorf("camera start interrupted by stop")
		case <-ctx.Done():
			p.abortStart(device)
			return ctx.Err()
		}
	}

	p.mu.Lock()
	// A Stop issued during open or warm-up closes cancel under this
	// same lock, so the check here cannot miss it.
	select {
	case <-cancel:
		p.state = StateStopped
		p.startCancel = nil
		p.startDone = nil
		p.mu.Unlock()
		device.Close()
		p.slot.Clear()
		return fmt.Errorf("camera start interrupted by stop")
	default:
	}
	p.device = device
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	p.startCancel = nil
	p.startDone = nil
	p.state = StateRunning
	stop, done := p.stop, p.done
	p.mu.Unlock()

	p.logger.Info("camera capture started",
		logging.String(logging.FieldDevice, p.settings.Device),
		logging.Int("width", p.settings.Width),
		logging.Int("height", p.settings.Height),
		logging.Int("framerate", p.settings.Framerate))
	go p.run(device, stop, done)
	return nil
}

// abortStart lands an interrupted Start in the stopped state and
// releases the device if one was opened.
func (p *Producer) abortStart(device Device) {
	p.mu.Lock()
	p.state = StateStopped
	p.startCancel = nil
	p.startDone = nil
	p.mu.Unlock()
	if device != nil {
		device.Close()
	}
	p.slot.Clear()
}

// Stop halts the capture loop, closes the device, and clears the slot
// so stream sessions fall back to placeholders at once. A Stop during
// an in-flight Start aborts it; a Stop during another Stop joins that
// teardown. Either way the producer ends in the stopped state. Safe to
// call repeatedly; all waits are bounded so a wedged device cannot
// hang shutdown.
func (p *Producer) Stop() error {
	p.mu.Lock()
	switch p.state {
	case StateStopped:
		p.mu.Unlock()
		return nil
	case StateStarting:
		if p.startCancel != nil {
			close(p.startCancel)
			p.startCancel = nil
		}
		settled := p.startDone
		p.mu.Unlock()
		if settled != nil {
			select {
			case <-settled:
			case <-time.After(stopJoinTimeout):
				p.logger.Warn("camera start did not abort in time")
			}
		}
		return nil
	case StateStopping:
		teardown := p.stopDone
		p.mu.Unlock()
		if teardown != nil {
			select {
			case <-teardown:
			case <-time.After(stopJoinTimeout):
			}
		}
		return nil
	}
	teardown := make(chan struct{})
	p.stopDone = teardown
	p.state = StateStopping
	close(p.stop)
	device, done := p.device, p.done
	p.mu.Unlock()

	defer close(teardown)

	select {
	case <-done:
	case <-time.After(stopJoinTimeout):
		p.logger.Warn("capture loop did not exit in time, closing device anyway")
	}
	err := device.Close()

	p.mu.Lock()
	p.device = nil
	p.stopDone = nil
	p.state = StateStopped
	p.mu.Unlock()
	p.slot.Clear()

	if err != nil {
		return fmt.Errorf("close camera device: %w", err)
	}
	p.logger.Info("camera capture stopped")
	return nil
}

func (p *Producer) run(device Device, stop, done chan struct{}) {
	defer close(done)
	failures := 0
	for {
		select {
		case <-stop:
			return
		default:
		}
		data, err := device.ReadJPEG()
		if err != nil {
			failures++
			p.logger.Warn("frame read failed",
				logging.Error(err),
				logging.Int("consecutive_failures", failures))
			if failures >= maxConsecutiveReadFailures {
				p.logger.Error("camera faulted after repeated read failures")
				p.fault(device, err)
				return
			}
			select {
			case <-stop:
				return
			case <-time.After(readFailureBackoff):
			}
			continue
		}
		failures = 0
		p.slot.Publish(data, time.Now())
	}
}

// fault tears down after an unrecoverable read error. If Stop already
// moved the state past running it owns cleanup and fault does nothing.
func (p *Producer) fault(device Device, cause error) {
	p.mu.Lock()
	if p.state != StateRunning {
		p.mu.Unlock()
		return
	}
	p.device = nil
	p.state = StateStopped
	notify := p.onFault
	p.mu.Unlock()
	device.Close()
	p.slot.Clear()
	if notify != nil {
		notify(fmt.Sprintf("camera read failures: %v", cause))
	}
}
