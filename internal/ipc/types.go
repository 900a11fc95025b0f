package ipc

import "rovercam/internal/api"

// StartRequest triggers daemon startup.
type StartRequest struct{}

// StartResponse indicates whether the daemon was started.
type StartResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// StopRequest stops the daemon services.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse mirrors the HTTP status DTO for IPC callers.
type StatusResponse struct {
	Status api.StatusResponse `json:"status"`
}

// ControlRequest relays a movement command.
type ControlRequest struct {
	Direction string `json:"direction"`
}

// ControlResponse reports the relay outcome.
type ControlResponse struct {
	Result api.ControlResponse `json:"result"`
}

// HistoryRequest fetches recent relayed commands.
type HistoryRequest struct {
	Limit int `json:"limit"`
}

// HistoryResponse contains command history entries, newest first.
type HistoryResponse struct {
	Entries []api.HistoryEntry `json:"entries"`
}

// LogTailRequest fetches buffered log events past a sequence number.
type LogTailRequest struct {
	Since      uint64 `json:"since"`
	Limit      int    `json:"limit"`
	Follow     bool   `json:"follow"`
	WaitMillis int    `json:"wait_millis"`
}

// LogTailResponse returns log events and the next sequence cursor.
type LogTailResponse struct {
	Events []api.LogEvent `json:"events"`
	Next   uint64         `json:"next"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
