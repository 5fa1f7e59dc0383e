// Package status records probe outcomes and tracks monitor up/down state.
package status

import (
	"context"
	"fmt"
	"sync"

	"github.com/guregu/null/v5"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimecore/internal/check"
	"github.com/hamed0406/uptimecore/internal/domain"
	"github.com/hamed0406/uptimecore/internal/repo"
)

type Engine struct {
	monitors repo.MonitorStore
	checks   repo.CheckStore
	log      *zap.Logger

	inflight sync.WaitGroup
}

func New(monitors repo.MonitorStore, checks repo.CheckStore, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{monitors: monitors, checks: checks, log: log}
}

// UpdateStatus persists the check in the background and applies the probe
// outcome to the monitor. Only load and save failures are returned.
func (e *Engine) UpdateStatus(ctx context.Context, r domain.ProbeResult) (domain.StatusUpdate, error) {
	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		_ = e.InsertCheck(context.WithoutCancel(ctx), r)
	}()

	m, err := e.monitors.GetMonitorByID(ctx, r.MonitorID)
	if err != nil {
		e.log.Error("load_monitor_failed", zap.String("monitor_id", r.MonitorID), zap.Error(err))
		return domain.StatusUpdate{}, fmt.Errorf("load monitor %s: %w", r.MonitorID, err)
	}

	prev := m.Status
	if prev.Valid && prev.Bool == r.Status {
		return domain.StatusUpdate{Monitor: m, Probe: r, PrevStatus: prev}, nil
	}

	next := null.BoolFrom(r.Status)
	e.log.Info("status_changed",
		zap.String("monitor_id", m.ID),
		zap.String("summary", fmt.Sprintf("%s went from %s to %s", m.Name, domain.StatusString(prev), domain.StatusString(next))),
		zap.Int("code", r.Code),
	)
	m.Status = next
	if err := e.monitors.SaveMonitor(ctx, m); err != nil {
		e.log.Error("save_monitor_failed", zap.String("monitor_id", m.ID), zap.Error(err))
		return domain.StatusUpdate{}, fmt.Errorf("save monitor %s: %w", m.ID, err)
	}
	return domain.StatusUpdate{Monitor: m, Probe: r, StatusChanged: true, PrevStatus: prev}, nil
}

// InsertCheck builds the check record and writes it with the store
// operation for the monitor type.
func (e *Engine) InsertCheck(ctx context.Context, r domain.ProbeResult) error {
	c := check.Build(r)

	insert := e.checks.CreateCheck
	switch r.Type {
	case domain.TypePagespeed:
		insert = e.checks.CreatePageSpeedCheck
	case domain.TypeHardware:
		insert = e.checks.CreateHardwareCheck
	case domain.TypeDistributedHTTP:
		insert = e.checks.CreateDistributedCheck
	}
	if err := insert(ctx, &c); err != nil {
		e.log.Error("insert_check_failed",
			zap.String("monitor_id", r.MonitorID),
			zap.String("type", string(r.Type)),
			zap.Error(err))
		return err
	}
	return nil
}

// Drain waits for background check writes, or for ctx to end.
func (e *Engine) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
