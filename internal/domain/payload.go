package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// CPUMetrics is the cpu section reported by a hardware agent.
type CPUMetrics struct {
	PhysicalCore     int       `json:"physical_core"`
	LogicalCore      int       `json:"logical_core"`
	Frequency        float64   `json:"frequency"`
	CurrentFrequency float64   `json:"current_frequency"`
	Temperature      []float64 `json:"temperature,omitempty"`
	FreePercent      *float64  `json:"free_percent,omitempty"`
	UsagePercent     *float64  `json:"usage_percent,omitempty"`
}

type MemoryMetrics struct {
	TotalBytes     float64  `json:"total_bytes"`
	AvailableBytes float64  `json:"available_bytes"`
	UsedBytes      float64  `json:"used_bytes"`
	UsagePercent   *float64 `json:"usage_percent,omitempty"`
}

type DiskMetrics struct {
	ReadSpeedBytes  float64  `json:"read_speed_bytes"`
	WriteSpeedBytes float64  `json:"write_speed_bytes"`
	TotalBytes      float64  `json:"total_bytes"`
	FreeBytes       float64  `json:"free_bytes"`
	UsagePercent    *float64 `json:"usage_percent,omitempty"`
}

type HostInfo struct {
	OS            string `json:"os,omitempty"`
	Platform      string `json:"platform,omitempty"`
	KernelVersion string `json:"kernel_version,omitempty"`
}

type HardwareError struct {
	Metric []string `json:"metric"`
	Err    string   `json:"err"`
}

type HardwareData struct {
	CPU    *CPUMetrics    `json:"cpu"`
	Memory *MemoryMetrics `json:"memory"`
	Disk   []DiskMetrics  `json:"disk"`
	Host   *HostInfo      `json:"host"`
}

// HardwarePayload is the body returned by a hardware agent.
type HardwarePayload struct {
	Data   *HardwareData   `json:"data"`
	Errors []HardwareError `json:"errors"`
}

// DecodeHardware parses a hardware agent response. ok is false when the
// payload is not a JSON object or carries no data section.
func DecodeHardware(raw []byte) (p HardwarePayload, ok bool) {
	if len(raw) == 0 {
		return p, false
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return HardwarePayload{}, false
	}
	return p, p.Data != nil
}

// Audit is one Lighthouse audit from a PageSpeed Insights response.
type Audit struct {
	ID               string   `json:"id,omitempty"`
	Title            string   `json:"title,omitempty"`
	Score            *float64 `json:"score"`
	ScoreDisplayMode string   `json:"scoreDisplayMode,omitempty"`
	NumericValue     float64  `json:"numericValue"`
	NumericUnit      string   `json:"numericUnit,omitempty"`
	DisplayValue     string   `json:"displayValue,omitempty"`
}

type Category struct {
	Score *float64 `json:"score"`
}

type LighthouseResult struct {
	Categories map[string]Category `json:"categories"`
	Audits     map[string]Audit    `json:"audits"`
}

type PagespeedPayload struct {
	LighthouseResult *LighthouseResult `json:"lighthouseResult"`
}

func DecodePagespeed(raw []byte) (p PagespeedPayload, ok bool) {
	if len(raw) == 0 {
		return p, false
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return PagespeedPayload{}, false
	}
	return p, p.LighthouseResult != nil
}

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Decimal keeps a decimal amount in its textual form. It accepts both JSON
// strings and numbers.
type Decimal string

func (d *Decimal) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*d = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		s, err := strconv.Unquote(string(b))
		if err != nil {
			return err
		}
		*d = Decimal(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*d = Decimal(n.String())
	return nil
}

// DistributedResult is the raw result a probe network node posts back.
type DistributedResult struct {
	Timings
	StatusCode  int       `json:"status_code"`
	Error       string    `json:"error"`
	Continent   string    `json:"continent,omitempty"`
	CountryCode string    `json:"country_code,omitempty"`
	City        string    `json:"city,omitempty"`
	Location    *Location `json:"location,omitempty"`
	UptBurnt    Decimal   `json:"upt_burnt,omitempty"`
	IPAddress   string    `json:"ip_address,omitempty"`
	DeviceID    string    `json:"device_id,omitempty"`
}

func DecodeDistributed(raw []byte) (r DistributedResult, ok bool) {
	if len(raw) == 0 {
		return r, false
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return DistributedResult{}, false
	}
	return r, true
}
