package stream

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"rovercam/internal/camera"
	"rovercam/internal/logging"
)

// Options bound how fast a session emits frames.
type Options struct {
	// MaxFPS caps the live frame rate per client, independent of the
	// capture rate.
	MaxFPS int
	// Freshness is the maximum age of a slot frame that may still be
	// streamed as live video.
	Freshness time.Duration
	// OfflineInterval is the placeholder cadence while no live frame
	// exists.
	OfflineInterval time.Duration
}

// Streamer fans the shared frame slot out to any number of MJPEG
// clients. Sessions only read the slot, so they need no coordination
// with the capture side beyond the slot itself.
type Streamer struct {
	slot        *camera.Slot
	placeholder func() ([]byte, error)
	opts        Options
	logger      *slog.Logger
	active      atomic.Int64
}

// New builds a streamer. placeholder supplies the image to emit while
// no fresh frame is available; it is consulted per emission so the
// caller can swap the message when camera availability changes.
func New(slot *camera.Slot, placeholder func() ([]byte, error), opts Options, logger *slog.Logger) *Streamer {
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.MaxFPS < 1 {
		opts.MaxFPS = 1
	}
	return &Streamer{
		slot:        slot,
		placeholder: placeholder,
		opts:        opts,
		logger:      logging.NewComponentLogger(logger, "stream"),
	}
}

// ServeHTTP runs one MJPEG session for the life of the request.
func (s *Streamer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", ContentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	s.Serve(r.Context(), w)
}

// Serve streams parts to w until ctx is cancelled or the client goes
// away. Client disconnects are a normal way for a session to end, so
// Serve never returns an error.
func (s *Streamer) Serve(ctx context.Context, w io.Writer) {
	sessionID := uuid.NewString()[:8]
	logger := s.logger.With(logging.String(logging.FieldSessionID, sessionID))
	logger.Info("stream session started")
	s.active.Add(1)
	defer s.active.Add(-1)

	liveInterval := time.Second / time.Duration(s.opts.MaxFPS)
	pw := newPartWriter(ctx, w)
	framesSent := 0
	placeholdersSent := 0

	defer func() {
		logger.Info("stream session ended",
			logging.Int("frames", framesSent),
			logging.Int("placeholders", placeholdersSent))
	}()

	for {
		if ctx.Err() != nil {
			return
		}
		now := time.Now()
		var wait time.Duration

		if frame, ok := s.slot.FreshFrame(now, s.opts.Freshness); ok {
			if err := pw.WritePart(frame.Data); err != nil {
				logger.Debug("stream write failed", logging.Error(err))
				return
			}
			framesSent++
			wait = liveInterval
		} else if _, present := s.slot.Read(); present {
			// A frame exists but is stale: the capture loop is likely
			// mid-hiccup. Recheck soon without emitting anything.
			wait = liveInterval / 2
		} else {
			data, err := s.placeholder()
			if err != nil {
				// Skip the emission entirely rather than send an
				// empty part.
				logger.Warn("placeholder render failed", logging.Error(err))
			} else {
				if err := pw.WritePart(data); err != nil {
					logger.Debug("stream write failed", logging.Error(err))
					return
				}
				placeholdersSent++
			}
			wait = s.opts.OfflineInterval
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// ActiveSessions reports how many MJPEG sessions are currently being
// served.
func (s *Streamer) ActiveSessions() int {
	return int(s.active.Load())
}
