package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimecore/internal/domain"
)

const maxBodyBytes = 4 << 20

// HTTPChecker issues a GET against the monitor URL and optionally matches
// the response body against the monitor's expected value.
type HTTPChecker struct {
	Client *http.Client
	Logger *zap.Logger
	// Diagnose classifies the target host after a transport failure.
	Diagnose func(ctx context.Context, host string) DNSStatus
}

func NewHTTPChecker(timeout time.Duration, log *zap.Logger) *HTTPChecker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPChecker{
		Client:   &http.Client{Timeout: timeout},
		Logger:   log,
		Diagnose: CheckDNS,
	}
}

type httpResponse struct {
	code   int
	header http.Header
	body   []byte
}

type statusError struct {
	code int
}

func (e *statusError) Error() string { return fmt.Sprintf("unexpected status %d", e.code) }

func (h *HTTPChecker) Check(ctx context.Context, m *domain.Monitor) domain.ProbeResult {
	out := timeRequest(func() (*httpResponse, error) {
		return h.get(ctx, m.URL, m.Secret)
	})
	res := baseResult(m)
	res.ResponseTime = out.ResponseTime

	if out.Err != nil {
		res.Code = domain.NetworkError
		var se *statusError
		if errors.As(out.Err, &se) {
			res.Code = se.code
		} else {
			h.logTransportFailure(ctx, m, out.Err)
		}
		res.Message = statusMessage(res.Code)
		return res
	}

	resp := out.Response
	res.Code = resp.code
	res.Payload = resp.body
	if m.ExpectedValue == "" {
		res.Status = true
		res.Message = statusMessage(resp.code)
		return res
	}
	res.Status, res.Message = matchResponse(m, resp)
	return res
}

func (h *HTTPChecker) get(ctx context.Context, url, secret string) (*httpResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if secret != "" {
		req.Header.Set("Authorization", "Bearer "+secret)
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &statusError{code: resp.StatusCode}
	}
	return &httpResponse{code: resp.StatusCode, header: resp.Header, body: body}, nil
}

func (h *HTTPChecker) logTransportFailure(ctx context.Context, m *domain.Monitor, err error) {
	fields := []zap.Field{
		zap.String("monitor_id", m.ID),
		zap.String("url", m.URL),
		zap.Error(err),
	}
	if h.Diagnose != nil {
		if host := extractHost(m.URL); host != "" {
			d := h.Diagnose(ctx, host)
			fields = append(fields, zap.String("dns_class", d.Class), zap.Strings("nameservers", d.Nameservers))
		}
	}
	h.Logger.Warn("http_probe_failed", fields...)
}
