package domain

import "time"

// Check is the persisted record of one probe cycle. At most one of the
// type-specific sections is set.
type Check struct {
	ID           string      `json:"id"`
	MonitorID    string      `json:"monitor_id"`
	TeamID       string      `json:"team_id,omitempty"`
	Type         MonitorType `json:"type"`
	Status       bool        `json:"status"`
	StatusCode   int         `json:"status_code"`
	ResponseTime int64       `json:"response_time"`
	Message      string      `json:"message"`
	Timings      *Timings    `json:"timings,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`

	PageSpeed   *PageSpeedDetails   `json:"pagespeed,omitempty"`
	Hardware    *HardwareDetails    `json:"hardware,omitempty"`
	Distributed *DistributedDetails `json:"distributed,omitempty"`
}

type PageSpeedAudits struct {
	CLS Audit `json:"cls"`
	SI  Audit `json:"si"`
	FCP Audit `json:"fcp"`
	LCP Audit `json:"lcp"`
	TBT Audit `json:"tbt"`
}

// PageSpeedDetails scores are on a 0-100 scale.
type PageSpeedDetails struct {
	Accessibility float64         `json:"accessibility"`
	BestPractices float64         `json:"best_practices"`
	SEO           float64         `json:"seo"`
	Performance   float64         `json:"performance"`
	Audits        PageSpeedAudits `json:"audits"`
}

type HardwareDetails struct {
	CPU    CPUMetrics      `json:"cpu"`
	Memory MemoryMetrics   `json:"memory"`
	Disk   []DiskMetrics   `json:"disk"`
	Host   HostInfo        `json:"host"`
	Errors []HardwareError `json:"errors"`
}

type DistributedDetails struct {
	Continent   string    `json:"continent,omitempty"`
	CountryCode string    `json:"country_code,omitempty"`
	City        string    `json:"city,omitempty"`
	Location    *Location `json:"location,omitempty"`
	UptBurnt    Decimal   `json:"upt_burnt,omitempty"`
}
