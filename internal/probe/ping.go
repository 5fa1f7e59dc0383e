package probe

import (
	"context"
	"encoding/json"
	"time"

	probing "github.com/prometheus-community/pro-bing"

	"github.com/hamed0406/uptimecore/internal/domain"
)

// PingStats is the ping summary stored as the probe payload.
type PingStats struct {
	Host        string  `json:"host"`
	Addr        string  `json:"numeric_host,omitempty"`
	Alive       bool    `json:"alive"`
	PacketsSent int     `json:"packets_sent"`
	PacketsRecv int     `json:"packets_recv"`
	PacketLoss  float64 `json:"packet_loss"`
	MinRTT      float64 `json:"min"`
	AvgRTT      float64 `json:"avg"`
	MaxRTT      float64 `json:"max"`
}

// Pinger sends ICMP echo requests to a host.
type Pinger interface {
	Ping(ctx context.Context, host string) (PingStats, error)
}

// ICMPPinger is the pro-bing backed Pinger. Unprivileged mode uses UDP
// sockets and needs net.ipv4.ping_group_range on Linux.
type ICMPPinger struct {
	Count      int
	Timeout    time.Duration
	Privileged bool
}

func (p ICMPPinger) Ping(ctx context.Context, host string) (PingStats, error) {
	pinger, err := probing.NewPinger(host)
	if err != nil {
		return PingStats{}, err
	}
	pinger.Count = p.Count
	if pinger.Count <= 0 {
		pinger.Count = 1
	}
	pinger.Timeout = p.Timeout
	if pinger.Timeout <= 0 {
		pinger.Timeout = 5 * time.Second
	}
	pinger.SetPrivileged(p.Privileged)

	if err := pinger.RunWithContext(ctx); err != nil {
		return PingStats{}, err
	}
	st := pinger.Statistics()
	return PingStats{
		Host:        host,
		Addr:        st.Addr,
		Alive:       st.PacketsRecv > 0,
		PacketsSent: st.PacketsSent,
		PacketsRecv: st.PacketsRecv,
		PacketLoss:  st.PacketLoss,
		MinRTT:      millis(st.MinRtt),
		AvgRTT:      millis(st.AvgRtt),
		MaxRTT:      millis(st.MaxRtt),
	}, nil
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

type PingChecker struct {
	Pinger Pinger
}

func (p *PingChecker) Check(ctx context.Context, m *domain.Monitor) domain.ProbeResult {
	out := timeRequest(func() (PingStats, error) {
		return p.Pinger.Ping(ctx, extractHost(m.URL))
	})
	res := baseResult(m)
	res.ResponseTime = out.ResponseTime
	if out.Err != nil {
		res.Code = domain.PingError
		res.Message = msgPingFail
		return res
	}
	res.Status = out.Response.Alive
	res.Code = 200
	res.Message = msgPingSuccess
	res.Payload, _ = json.Marshal(out.Response)
	return res
}
