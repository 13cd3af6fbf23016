package ipc

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents daemon runtime information.
type StatusResponse struct {
	Running        bool   `json:"running"`
	PID            int    `json:"pid"`
	StartedAt      string `json:"started_at"`
	LockPath       string `json:"lock_path"`
	SessionDBPath  string `json:"session_db_path"`
	LoggedIn       bool   `json:"logged_in"`
	Email          string `json:"email"`
	CurrentAssetID string `json:"current_asset_id"`
	CurrentJobID   string `json:"current_job_id"`
	WatchingJob    bool   `json:"watching_job"`
	LastError      string `json:"last_error"`
}

// StopRequest stops the daemon.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
