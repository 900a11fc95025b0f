package api

import (
	"time"

	"rovercam/internal/history"
	"rovercam/internal/logging"
)

// CameraStatus describes capture availability and state.
type CameraStatus struct {
	Available  bool   `json:"available"`
	Reason     string `json:"reason,omitempty"`
	State      string `json:"state"`
	Device     string `json:"device"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Framerate  int    `json:"framerate"`
	FrameFresh bool   `json:"frame_fresh"`
}

// RelayStatus describes motor controller reachability.
type RelayStatus struct {
	Target    string `json:"target"`
	Reachable bool   `json:"reachable"`
}

// TunnelStatus describes the public tunnel, when enabled.
type TunnelStatus struct {
	Enabled bool   `json:"enabled"`
	Running bool   `json:"running"`
	URL     string `json:"url,omitempty"`
}

// DependencyStatus describes availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// StatusResponse is the combined daemon status.
type StatusResponse struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	StartedAt    time.Time          `json:"started_at"`
	LocalURL     string             `json:"local_url"`
	Camera       CameraStatus       `json:"camera"`
	Relay        RelayStatus        `json:"relay"`
	Tunnel       TunnelStatus       `json:"tunnel"`
	Internet     bool               `json:"internet"`
	Sessions     int                `json:"sessions"`
	HistoryCount int                `json:"history_count"`
	LockPath     string             `json:"lock_path"`
	Dependencies []DependencyStatus `json:"dependencies,omitempty"`
}

// ControlResponse reports the outcome of one movement command.
type ControlResponse struct {
	Direction string `json:"direction"`
	Command   string `json:"command"`
	OK        bool   `json:"ok"`
	Message   string `json:"message,omitempty"`
}

// HistoryEntry mirrors the persisted command audit row.
type HistoryEntry = history.Entry

// LogEvent is one structured log record for remote consumers.
type LogEvent struct {
	Sequence  uint64            `json:"sequence"`
	Timestamp time.Time         `json:"timestamp"`
	Level     string            `json:"level"`
	Component string            `json:"component,omitempty"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// FromLogEvent converts a hub event into the wire DTO.
func FromLogEvent(event logging.Event) LogEvent {
	return LogEvent{
		Sequence:  event.Sequence,
		Timestamp: event.Timestamp,
		Level:     event.Level,
		Component: event.Component,
		Message:   event.Message,
		Fields:    event.Fields,
	}
}

// FromLogEvents converts a batch of hub events.
func FromLogEvents(events []logging.Event) []LogEvent {
	if len(events) == 0 {
		return nil
	}
	out := make([]LogEvent, 0, len(events))
	for _, event := range events {
		out = append(out, FromLogEvent(event))
	}
	return out
}
