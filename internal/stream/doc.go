// Package stream serves MJPEG over multipart/x-mixed-replace. Each
// HTTP client gets its own session that paces itself against the shared
// frame slot and falls back to placeholder images while no live frame
// is available.
package stream
