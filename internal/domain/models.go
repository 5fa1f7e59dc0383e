package domain

import (
	"time"

	"github.com/guregu/null/v5"
)

type MonitorType string

const (
	TypeHTTP            MonitorType = "http"
	TypePing            MonitorType = "ping"
	TypePagespeed       MonitorType = "pagespeed"
	TypeHardware        MonitorType = "hardware"
	TypeDocker          MonitorType = "docker"
	TypePort            MonitorType = "port"
	TypeDistributedHTTP MonitorType = "distributed_http"
)

type MatchMethod string

const (
	MatchInclude MatchMethod = "include"
	MatchRegex   MatchMethod = "regex"
	MatchExact   MatchMethod = "exact"
)

// Thresholds are usage fractions (0.8 == 80%). A nil field or -1 disables
// alerting for that metric.
type Thresholds struct {
	UsageCPU    *float64 `json:"usage_cpu,omitempty"`
	UsageMemory *float64 `json:"usage_memory,omitempty"`
	UsageDisk   *float64 `json:"usage_disk,omitempty"`
}

func thresholdOrDisabled(v *float64) float64 {
	if v == nil {
		return -1
	}
	return *v
}

func (t Thresholds) CPU() float64    { return thresholdOrDisabled(t.UsageCPU) }
func (t Thresholds) Memory() float64 { return thresholdOrDisabled(t.UsageMemory) }
func (t Thresholds) Disk() float64   { return thresholdOrDisabled(t.UsageDisk) }

type Monitor struct {
	ID     string      `json:"id"`
	TeamID string      `json:"team_id,omitempty"`
	Name   string      `json:"name"`
	Type   MonitorType `json:"type"`
	URL    string      `json:"url"`
	Port   int         `json:"port,omitempty"`
	Secret string      `json:"-"`

	JSONPath      string      `json:"json_path,omitempty"`
	MatchMethod   MatchMethod `json:"match_method,omitempty"`
	ExpectedValue string      `json:"expected_value,omitempty"`

	Thresholds *Thresholds `json:"thresholds,omitempty"`

	// Status is invalid until the first probe cycle completes.
	Status    null.Bool `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// StatusString renders a tri-state status the way transition logs show it.
func StatusString(s null.Bool) string {
	if !s.Valid {
		return "unknown"
	}
	if s.Bool {
		return "up"
	}
	return "down"
}

type NotificationType string

const (
	NotificationEmail   NotificationType = "email"
	NotificationWebhook NotificationType = "webhook"
)

type Platform string

const (
	PlatformTelegram Platform = "telegram"
	PlatformSlack    Platform = "slack"
	PlatformDiscord  Platform = "discord"
)

type WebhookConfig struct {
	WebhookURL string `json:"webhook_url,omitempty"`
	BotToken   string `json:"bot_token,omitempty"`
	ChatID     string `json:"chat_id,omitempty"`
}

type Metric string

const (
	MetricCPU    Metric = "cpu"
	MetricMemory Metric = "memory"
	MetricDisk   Metric = "disk"
)

// Metrics is the fixed order hardware alerts are evaluated in.
var Metrics = []Metric{MetricCPU, MetricMemory, MetricDisk}

type Notification struct {
	ID        string           `json:"id"`
	MonitorID string           `json:"monitor_id"`
	Type      NotificationType `json:"type"`
	Address   string           `json:"address,omitempty"`
	Platform  Platform         `json:"platform,omitempty"`
	Config    WebhookConfig    `json:"config"`

	// AlertThreshold is the value each hardware counter resets to after firing.
	AlertThreshold       int `json:"alert_threshold"`
	CPUAlertThreshold    int `json:"cpu_alert_threshold"`
	MemoryAlertThreshold int `json:"memory_alert_threshold"`
	DiskAlertThreshold   int `json:"disk_alert_threshold"`
}

// Counter returns the hysteresis counter for metric, or nil for an unknown metric.
func (n *Notification) Counter(m Metric) *int {
	switch m {
	case MetricCPU:
		return &n.CPUAlertThreshold
	case MetricMemory:
		return &n.MemoryAlertThreshold
	case MetricDisk:
		return &n.DiskAlertThreshold
	}
	return nil
}

// ResetCounters primes every hardware counter with AlertThreshold.
func (n *Notification) ResetCounters() {
	n.CPUAlertThreshold = n.AlertThreshold
	n.MemoryAlertThreshold = n.AlertThreshold
	n.DiskAlertThreshold = n.AlertThreshold
}
