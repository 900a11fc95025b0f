package camera

import "errors"

// ErrDeviceUnavailable reports that no usable capture device exists on
// this host. Providers return it from Open when the device node is
// absent or camera support was not built in.
var ErrDeviceUnavailable = errors.New("camera device unavailable")

// Settings describes how a capture device should be opened.
type Settings struct {
	// Device is a V4L2 node path such as /dev/video0, or a bare
	// integer index.
	Device      string
	Width       int
	Height      int
	Framerate   int
	JPEGQuality int
}

// Device is an open capture handle. ReadJPEG blocks until the next
// frame is available and returns it already JPEG-encoded. Close is
// idempotent.
type Device interface {
	ReadJPEG() ([]byte, error)
	Close() error
}
