// Package api defines the DTO types shared by the HTTP handlers, the
// IPC surface, and the CLI so all three render the same shapes.
package api
