package domain

import "github.com/guregu/null/v5"

// Synthetic codes used when no real protocol status code is available.
const (
	NetworkError = 5000
	PingError    = 5001
)

// Timings is the request phase breakdown reported by distributed probes,
// in nanoseconds.
type Timings struct {
	FirstByte int64 `json:"first_byte_took"`
	BodyRead  int64 `json:"body_read_took"`
	DNS       int64 `json:"dns_took"`
	Conn      int64 `json:"conn_took"`
	Connect   int64 `json:"connect_took"`
	TLS       int64 `json:"tls_took"`
}

// ProbeResult is the normalized outcome of one probe.
type ProbeResult struct {
	MonitorID    string      `json:"monitor_id"`
	TeamID       string      `json:"team_id,omitempty"`
	Type         MonitorType `json:"type"`
	Status       bool        `json:"status"`
	Code         int         `json:"code"`
	Message      string      `json:"message"`
	ResponseTime int64       `json:"response_time"` // ms
	Payload      []byte      `json:"-"`
	Timings      *Timings    `json:"timings,omitempty"`
}

// StatusUpdate is what the status engine reports after a probe cycle.
type StatusUpdate struct {
	Monitor       *Monitor
	Probe         ProbeResult
	StatusChanged bool
	PrevStatus    null.Bool
}

// WebhookResult is the normalized outcome of a webhook delivery.
type WebhookResult struct {
	Status  bool
	Code    int
	Message string
	Payload []byte
}
