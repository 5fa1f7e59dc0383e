package probe

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimecore/internal/domain"
)

// Checker performs one probe against a monitor. Implementations never
// return transport errors; failures are folded into the result.
type Checker interface {
	Check(ctx context.Context, m *domain.Monitor) domain.ProbeResult
}

// UnsupportedTypeError is returned for monitor types with no registered checker.
type UnsupportedTypeError struct {
	Type domain.MonitorType
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("Unsupported type: %s", e.Type)
}

func (e *UnsupportedTypeError) Unwrap() error { return domain.ErrUnsupportedType }

// Dispatcher routes a monitor to the checker registered for its type.
type Dispatcher struct {
	checkers map[domain.MonitorType]Checker
}

func NewDispatcher(checkers map[domain.MonitorType]Checker) *Dispatcher {
	d := &Dispatcher{checkers: make(map[domain.MonitorType]Checker, len(checkers))}
	for t, c := range checkers {
		d.checkers[t] = c
	}
	return d
}

func (d *Dispatcher) Register(t domain.MonitorType, c Checker) {
	d.checkers[t] = c
}

func (d *Dispatcher) Execute(ctx context.Context, m *domain.Monitor) (domain.ProbeResult, error) {
	if m.Type == domain.TypeDistributedHTTP {
		return domain.ProbeResult{}, fmt.Errorf("monitor %s: %w", m.ID, domain.ErrAsyncMonitor)
	}
	c, ok := d.checkers[m.Type]
	if !ok {
		return domain.ProbeResult{}, &UnsupportedTypeError{Type: m.Type}
	}
	return c.Check(ctx, m), nil
}

// Options configures the default checker set.
type Options struct {
	HTTPTimeout       time.Duration
	PortTimeout       time.Duration
	Pinger            Pinger
	Docker            DockerAPI
	PagespeedEndpoint string
	PagespeedAPIKey   string
	Logger            *zap.Logger
}

// NewDefaultDispatcher wires every synchronous monitor type. Docker is
// skipped when no client is given.
func NewDefaultDispatcher(o Options) *Dispatcher {
	log := o.Logger
	if log == nil {
		log = zap.NewNop()
	}
	h := NewHTTPChecker(o.HTTPTimeout, log)
	table := map[domain.MonitorType]Checker{
		domain.TypeHTTP:      h,
		domain.TypeHardware:  h,
		domain.TypePagespeed: &PagespeedChecker{HTTP: h, Endpoint: o.PagespeedEndpoint, APIKey: o.PagespeedAPIKey},
		domain.TypePort:      &PortChecker{Timeout: o.PortTimeout},
	}
	if o.Pinger != nil {
		table[domain.TypePing] = &PingChecker{Pinger: o.Pinger}
	}
	if o.Docker != nil {
		table[domain.TypeDocker] = &DockerChecker{Client: o.Docker}
	}
	return NewDispatcher(table)
}

func baseResult(m *domain.Monitor) domain.ProbeResult {
	return domain.ProbeResult{MonitorID: m.ID, TeamID: m.TeamID, Type: m.Type}
}
