package models

import "time"

// HealthData is the body of the health endpoint.
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Always ok while the host is serving"`
	Session bool   `json:"session" example:"true" doc:"Whether a dialog session is open"`
}

// HealthResponse wraps HealthData.
type HealthResponse struct {
	Body HealthData
}

// VersionData describes the running build.
type VersionData struct {
	Version   string `json:"version" example:"dev" doc:"Application version"`
	GitCommit string `json:"git_commit" example:"abc123" doc:"Git commit hash"`
	BuildDate string `json:"build_date" example:"2025-01-27T10:30:00Z" doc:"Build timestamp"`
	GoVersion string `json:"go_version" example:"go1.25.6" doc:"Go toolchain version"`
	Platform  string `json:"platform" example:"linux/amd64" doc:"Target OS and architecture"`
}

// VersionResponse wraps VersionData.
type VersionResponse struct {
	Body VersionData
}

// SessionData is a snapshot of the open dialog session.
type SessionData struct {
	SessionID    string    `json:"session_id" doc:"Unique id assigned when the session was opened"`
	LaunchTarget string    `json:"launch_target" example:"rubyw dialog.rb" doc:"Command line the dialog was started with"`
	PID          int       `json:"pid" doc:"Dialog process id"`
	State        string    `json:"state" enum:"waiting,connected,closed_by_client" doc:"Handshake state"`
	Running      bool      `json:"running" doc:"Whether the bridge loop is still servicing the dialog"`
	Pending      int       `json:"pending" doc:"Outbound lines queued but not yet written"`
	StartedAt    time.Time `json:"started_at" doc:"When the dialog process was started"`
}

// SessionResponse wraps SessionData.
type SessionResponse struct {
	Body SessionData
}

// HelloEvent is the first message on every event stream.
type HelloEvent struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
