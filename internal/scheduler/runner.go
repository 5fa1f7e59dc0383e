package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/uptimecore/internal/domain"
	"github.com/hamed0406/uptimecore/internal/repo"
)

// Executor runs one synchronous probe.
type Executor interface {
	Execute(ctx context.Context, m *domain.Monitor) (domain.ProbeResult, error)
}

// AsyncDispatcher hands a monitor to a probe network that reports back later.
type AsyncDispatcher interface {
	Dispatch(ctx context.Context, m *domain.Monitor) error
}

type StatusUpdater interface {
	UpdateStatus(ctx context.Context, r domain.ProbeResult) (domain.StatusUpdate, error)
}

type Notifier interface {
	HandleNotifications(ctx context.Context, upd domain.StatusUpdate)
}

// Runner drives probe cycles for every stored monitor. A monitor never has
// two cycles in flight.
type Runner struct {
	Logger      *zap.Logger
	Monitors    repo.MonitorStore
	Probes      Executor
	Distributed AsyncDispatcher // optional
	Status      StatusUpdater
	Notifier    Notifier // optional
	Interval    time.Duration
	Timeout     time.Duration
	Concurrency int

	running sync.Map // monitor id -> struct{}
}

func NewRunner(
	logger *zap.Logger,
	monitors repo.MonitorStore,
	probes Executor,
	status StatusUpdater,
	interval time.Duration,
	timeout time.Duration,
	concurrency int,
) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	if interval < 0 {
		interval = 0
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Runner{
		Logger:      logger,
		Monitors:    monitors,
		Probes:      probes,
		Status:      status,
		Interval:    interval,
		Timeout:     timeout,
		Concurrency: concurrency,
	}
}

// Run does an immediate pass, then one per tick until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	if r.Interval == 0 {
		r.Logger.Info("scheduler_disabled")
		return
	}
	t := time.NewTicker(r.Interval)
	defer t.Stop()

	r.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			r.Logger.Info("scheduler_stopped")
			return
		case <-t.C:
			r.tick(ctx)
		}
	}
}

func (r *Runner) tick(ctx context.Context) {
	if err := r.RunCycle(ctx); err != nil {
		r.Logger.Warn("scheduler_list_error", zap.Error(err))
	}
}

// RunCycle probes every monitor once with bounded concurrency. Per-monitor
// failures are logged; only listing errors are returned.
func (r *Runner) RunCycle(ctx context.Context) error {
	monitors, err := r.Monitors.ListMonitors(ctx)
	if err != nil {
		return err
	}

	var g errgroup.Group
	g.SetLimit(r.Concurrency)
	for _, m := range monitors {
		g.Go(func() error {
			if err := r.RunMonitor(ctx, m); err != nil {
				r.Logger.Warn("monitor_cycle_failed",
					zap.String("monitor_id", m.ID),
					zap.String("type", string(m.Type)),
					zap.Error(err),
				)
			}
			return nil
		})
	}
	return g.Wait()
}

// RunMonitor executes one cycle for m: probe, status update, alerts.
// Distributed monitors are only dispatched; their cycle completes when the
// callback arrives.
func (r *Runner) RunMonitor(ctx context.Context, m *domain.Monitor) error {
	if _, busy := r.running.LoadOrStore(m.ID, struct{}{}); busy {
		r.Logger.Debug("monitor_cycle_skipped", zap.String("monitor_id", m.ID))
		return nil
	}
	defer r.running.Delete(m.ID)

	pctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	res, err := r.Probes.Execute(pctx, m)
	if errors.Is(err, domain.ErrAsyncMonitor) {
		if r.Distributed == nil {
			r.Logger.Debug("distributed_dispatch_disabled", zap.String("monitor_id", m.ID))
			return nil
		}
		return r.Distributed.Dispatch(pctx, m)
	}
	if err != nil {
		return err
	}

	upd, err := r.Status.UpdateStatus(ctx, res)
	if err != nil {
		return err
	}
	r.Logger.Debug("monitor_checked",
		zap.String("monitor_id", m.ID),
		zap.Bool("up", res.Status),
		zap.Int("code", res.Code),
		zap.Int64("response_time_ms", res.ResponseTime),
		zap.String("message", res.Message),
	)
	if r.Notifier != nil {
		r.Notifier.HandleNotifications(ctx, upd)
	}
	return nil
}
