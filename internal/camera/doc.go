// Package camera captures JPEG frames from a video device and publishes
// the latest one through a single-frame slot. The producer owns the
// device for its whole run: it opens the device on start, loops reading
// frames, and is the only goroutine that ever closes it.
package camera
