// Package check turns probe results into persisted check records.
package check

import (
	"math"

	"github.com/hamed0406/uptimecore/internal/domain"
)

const (
	auditCLS = "cumulative-layout-shift"
	auditSI  = "speed-index"
	auditFCP = "first-contentful-paint"
	auditLCP = "largest-contentful-paint"
	auditTBT = "total-blocking-time"
)

// Build is pure: malformed payloads yield the base record with an empty
// type section.
func Build(r domain.ProbeResult) domain.Check {
	c := domain.Check{
		MonitorID:    r.MonitorID,
		TeamID:       r.TeamID,
		Type:         r.Type,
		Status:       r.Status,
		StatusCode:   r.Code,
		ResponseTime: r.ResponseTime,
		Message:      r.Message,
	}
	if r.Timings != nil {
		t := *r.Timings
		c.Timings = &t
	}

	switch r.Type {
	case domain.TypeDistributedHTTP:
		c.Distributed = distributedDetails(r.Payload)
		// payload timings win over the normalized copy
		if res, ok := domain.DecodeDistributed(r.Payload); ok {
			t := res.Timings
			c.Timings = &t
		}
	case domain.TypePagespeed:
		c.PageSpeed = pagespeedDetails(r.Payload)
	case domain.TypeHardware:
		c.Hardware = hardwareDetails(r.Payload)
	}
	return c
}

func distributedDetails(raw []byte) *domain.DistributedDetails {
	res, ok := domain.DecodeDistributed(raw)
	if !ok {
		return &domain.DistributedDetails{}
	}
	d := &domain.DistributedDetails{
		Continent:   res.Continent,
		CountryCode: res.CountryCode,
		City:        res.City,
		UptBurnt:    res.UptBurnt,
	}
	if res.Location != nil {
		loc := *res.Location
		d.Location = &loc
	}
	return d
}

func pagespeedDetails(raw []byte) *domain.PageSpeedDetails {
	d := &domain.PageSpeedDetails{}
	p, ok := domain.DecodePagespeed(raw)
	if !ok {
		return d
	}
	lh := p.LighthouseResult
	d.Accessibility = score(lh.Categories, "accessibility")
	d.BestPractices = score(lh.Categories, "best-practices")
	d.SEO = score(lh.Categories, "seo")
	d.Performance = score(lh.Categories, "performance")
	d.Audits = domain.PageSpeedAudits{
		CLS: lh.Audits[auditCLS],
		SI:  lh.Audits[auditSI],
		FCP: lh.Audits[auditFCP],
		LCP: lh.Audits[auditLCP],
		TBT: lh.Audits[auditTBT],
	}
	return d
}

func score(cats map[string]domain.Category, name string) float64 {
	c, ok := cats[name]
	if !ok || c.Score == nil {
		return 0
	}
	return math.Round(*c.Score * 100)
}

func hardwareDetails(raw []byte) *domain.HardwareDetails {
	d := &domain.HardwareDetails{
		Disk:   []domain.DiskMetrics{},
		Errors: []domain.HardwareError{},
	}
	p, ok := domain.DecodeHardware(raw)
	if !ok {
		return d
	}
	if p.Data.CPU != nil {
		d.CPU = *p.Data.CPU
	}
	if p.Data.Memory != nil {
		d.Memory = *p.Data.Memory
	}
	if p.Data.Host != nil {
		d.Host = *p.Data.Host
	}
	if p.Data.Disk != nil {
		d.Disk = p.Data.Disk
	}
	if p.Errors != nil {
		d.Errors = p.Errors
	}
	return d
}
