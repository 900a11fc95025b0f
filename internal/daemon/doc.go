// Package daemon wires the camera producer, stream fan-out, motor
// relay, tunnel, and HTTP surface into one long-running process. The
// daemon is the single owner of every resource it starts: the device
// lock, the capture producer, the hotplug monitor, the HTTP listener,
// and the cloudflared process all start and stop through it, in order.
package daemon
