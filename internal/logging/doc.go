// Package logging builds the slog loggers used across rovercam and keeps
// structured field names consistent between the daemon, the HTTP API, and
// the CLI. It also hosts the in-memory hub that retains recent log events
// for /api/logs and the IPC LogTail call.
package logging
