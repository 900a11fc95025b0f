package camera

import (
	"sync"
	"time"
)

// Frame is one encoded JPEG together with its capture time.
type Frame struct {
	Data       []byte
	CapturedAt time.Time
}

// Slot holds the most recent frame. Writers replace the stored frame
// wholesale; readers get the stored slice and must treat it as
// immutable. The producer never mutates a published slice, so handing
// the same backing array to multiple stream sessions is safe.
type Slot struct {
	mu    sync.Mutex
	frame Frame
}

// NewSlot returns an empty slot.
func NewSlot() *Slot {
	return &Slot{}
}

// Publish stores data as the current frame, stamped with now.
func (s *Slot) Publish(data []byte, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = Frame{Data: data, CapturedAt: now}
}

// Read returns the current frame and whether one is present.
func (s *Slot) Read() (Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frame.Data == nil {
		return Frame{}, false
	}
	return s.frame, true
}

// Clear drops the stored frame so readers fall back to placeholders
// immediately instead of serving the last image from a stopped camera.
func (s *Slot) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = Frame{}
}

// FreshFrame returns the current frame only if it was captured within
// maxAge of now.
func (s *Slot) FreshFrame(now time.Time, maxAge time.Duration) (Frame, bool) {
	frame, ok := s.Read()
	if !ok {
		return Frame{}, false
	}
	if now.Sub(frame.CapturedAt) > maxAge {
		return Frame{}, false
	}
	return frame, true
}
