package probe

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"time"
)

// DNSStatus is a coarse classification of why a host may be unreachable.
type DNSStatus struct {
	Host        string
	IPs         []net.IP
	Nameservers []string
	Class       string // "RESOLVES" | "NXDOMAIN" | "NO_A_RECORD" | "SERVFAIL_or_TIMEOUT" | "IP_LITERAL"
	Err         string
}

var dnsTimeout = 3 * time.Second

// CheckDNS resolves host with the OS resolver and classifies the outcome.
func CheckDNS(ctx context.Context, host string) DNSStatus {
	s := DNSStatus{Host: host}
	if ip := net.ParseIP(host); ip != nil {
		s.IPs = []net.IP{ip}
		s.Class = "IP_LITERAL"
		return s
	}

	ctx, cancel := context.WithTimeout(ctx, dnsTimeout)
	defer cancel()
	r := &net.Resolver{}

	ips, err := r.LookupIP(ctx, "ip", host)
	switch {
	case err == nil && len(ips) > 0:
		s.IPs = ips
		s.Class = "RESOLVES"
		return s
	case err != nil:
		s.Err = err.Error()
		var de *net.DNSError
		if errors.As(err, &de) && de.IsNotFound {
			s.Class = "NXDOMAIN"
		} else {
			s.Class = "SERVFAIL_or_TIMEOUT"
		}
	default:
		s.Class = "NXDOMAIN"
	}

	if ns, err := r.LookupNS(ctx, host); err == nil && len(ns) > 0 {
		for _, n := range ns {
			s.Nameservers = append(s.Nameservers, strings.TrimSuffix(n.Host, "."))
		}
		if s.Class == "NXDOMAIN" {
			s.Class = "NO_A_RECORD"
		}
	}
	return s
}

// extractHost returns the bare host of a URL or host[:port] string.
func extractHost(target string) string {
	target = strings.TrimSpace(target)
	if target == "" {
		return ""
	}
	if strings.Contains(target, "://") {
		u, err := url.Parse(target)
		if err != nil {
			return ""
		}
		return u.Hostname()
	}
	if i := strings.IndexByte(target, '/'); i >= 0 {
		target = target[:i]
	}
	if h, _, err := net.SplitHostPort(target); err == nil {
		return h
	}
	return target
}
