package probe

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/hamed0406/uptimecore/internal/domain"
)

const defaultPortTimeout = 5 * time.Second

// PortChecker reports whether a TCP connection can be opened.
type PortChecker struct {
	Timeout time.Duration
}

func (p *PortChecker) Check(ctx context.Context, m *domain.Monitor) domain.ProbeResult {
	addr := m.URL
	if m.Port > 0 {
		addr = net.JoinHostPort(extractHost(m.URL), strconv.Itoa(m.Port))
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultPortTimeout
	}

	out := timeRequest(func() (struct{}, error) {
		dctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		var d net.Dialer
		conn, err := d.DialContext(dctx, "tcp", addr)
		if err != nil {
			return struct{}{}, err
		}
		_ = conn.Close()
		return struct{}{}, nil
	})

	res := baseResult(m)
	res.ResponseTime = out.ResponseTime
	if out.Err != nil {
		res.Code = domain.NetworkError
		res.Message = msgPortFail
		return res
	}
	res.Status = true
	res.Code = 200
	res.Message = msgPortSuccess
	return res
}
