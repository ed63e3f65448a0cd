package kuma

import (
	"log"
	"time"
)

// Config holds the connection settings for one Uptime Kuma server.
type Config struct {
	URL      string
	Username string
	Password string
	Timeout  time.Duration
}

// MonitorInfo is the slice of server-side monitor state the restore logic
// needs: enough for exact-name existence checks and id lookups.
type MonitorInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// NotificationInfo is the server-side notification channel summary.
type NotificationInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Session is one authenticated connection to an Uptime Kuma server. The
// restore phases each run on their own short-lived Session and see nothing
// of the wire protocol underneath.
type Session interface {
	// Monitors returns the server's current monitors (groups included).
	Monitors() ([]MonitorInfo, error)

	// Notifications returns the server's current notification channels.
	Notifications() ([]NotificationInfo, error)

	// AddMonitor creates a monitor or group and returns the decoded ack
	// payload; the response shape varies across server versions, so callers
	// run it through ExtractMonitorID.
	AddMonitor(payload map[string]interface{}) (interface{}, error)

	// AddNotification creates a notification channel and returns the decoded
	// ack payload.
	AddNotification(payload map[string]interface{}) (interface{}, error)

	// PauseMonitor pauses the monitor with the given server-side id.
	PauseMonitor(id int) error

	// Disconnect closes the session. Safe to call more than once.
	Disconnect() error
}

// Dialer opens a fresh authenticated Session. The retry wrapper uses it to
// replace a session that failed with a transient connection error.
type Dialer func() (Session, error)

// NewDialer returns a Dialer that connects and logs in with the given
// configuration.
func NewDialer(cfg Config, logger *log.Logger) Dialer {
	return func() (Session, error) {
		return Dial(cfg, logger)
	}
}
