package stream

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Boundary separates parts in the MJPEG stream.
const Boundary = "frame"

// ContentType is the response content type for the video feed.
const ContentType = "multipart/x-mixed-replace; boundary=" + Boundary

// partWriter emits one multipart part per frame. Every write first
// checks the context so a cancelled session stops mid-stream instead
// of blocking on a dead connection.
type partWriter struct {
	ctx     context.Context
	w       io.Writer
	flusher http.Flusher
}

func newPartWriter(ctx context.Context, w io.Writer) *partWriter {
	pw := &partWriter{ctx: ctx, w: w}
	if flusher, ok := w.(http.Flusher); ok {
		pw.flusher = flusher
	}
	return pw
}

// WritePart writes a single JPEG part. data must be non-empty; the
// stream never carries zero-length images.
func (pw *partWriter) WritePart(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("refusing to write empty image part")
	}
	if err := pw.ctx.Err(); err != nil {
		return err
	}
	header := fmt.Sprintf("--%s\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", Boundary, len(data))
	if _, err := io.WriteString(pw.w, header); err != nil {
		return fmt.Errorf("write part header: %w", err)
	}
	if _, err := pw.w.Write(data); err != nil {
		return fmt.Errorf("write part body: %w", err)
	}
	if _, err := io.WriteString(pw.w, "\r\n"); err != nil {
		return fmt.Errorf("write part trailer: %w", err)
	}
	if pw.flusher != nil {
		pw.flusher.Flush()
	}
	return nil
}
