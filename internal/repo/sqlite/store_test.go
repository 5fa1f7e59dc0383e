package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/guregu/null/v5"

	"github.com/hamed0406/uptimecore/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(context.Background(), filepath.Join(t.TempDir(), "uptime.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_MonitorStatusRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	disk := 0.75
	mon := &domain.Monitor{
		Name:          "api",
		Type:          domain.TypeHTTP,
		URL:           "https://example.com/health",
		JSONPath:      "status",
		MatchMethod:   domain.MatchExact,
		ExpectedValue: "ok",
		Thresholds:    &domain.Thresholds{UsageDisk: &disk},
	}
	if err := s.AddMonitor(ctx, mon); err != nil {
		t.Fatalf("AddMonitor: %v", err)
	}

	got, err := s.GetMonitorByID(ctx, mon.ID)
	if err != nil {
		t.Fatalf("GetMonitorByID: %v", err)
	}
	if got.Status.Valid {
		t.Fatalf("fresh monitor should have unknown status, got %+v", got.Status)
	}
	if got.MatchMethod != domain.MatchExact || got.Thresholds.Disk() != 0.75 {
		t.Fatalf("fields not round-tripped: %+v", got)
	}

	got.Status = null.BoolFrom(true)
	if err := s.SaveMonitor(ctx, got); err != nil {
		t.Fatalf("SaveMonitor: %v", err)
	}
	got, _ = s.GetMonitorByID(ctx, mon.ID)
	if !got.Status.Valid || !got.Status.Bool {
		t.Fatalf("status not saved: %+v", got.Status)
	}

	if _, err := s.GetMonitorByID(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err := s.SaveMonitor(ctx, &domain.Monitor{ID: "missing"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound on save, got %v", err)
	}

	list, err := s.ListMonitors(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListMonitors: %v %d", err, len(list))
	}
}

func TestSQLiteStore_TypedChecks(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	ps := &domain.Check{
		MonitorID:  "M",
		Type:       domain.TypePagespeed,
		Status:     true,
		StatusCode: 200,
		PageSpeed: &domain.PageSpeedDetails{
			Accessibility: 91,
			Performance:   55,
		},
	}
	if err := s.CreatePageSpeedCheck(ctx, ps); err != nil {
		t.Fatalf("CreatePageSpeedCheck: %v", err)
	}
	dist := &domain.Check{
		MonitorID:   "M",
		Type:        domain.TypeDistributedHTTP,
		Timings:     &domain.Timings{FirstByte: 425133400},
		Distributed: &domain.DistributedDetails{City: "Muzaffargarh", UptBurnt: "0.01"},
	}
	if err := s.CreateDistributedCheck(ctx, dist); err != nil {
		t.Fatalf("CreateDistributedCheck: %v", err)
	}

	got, err := s.LatestCheck(ctx, "M", "pagespeed")
	if err != nil {
		t.Fatalf("LatestCheck pagespeed: %v", err)
	}
	if got.PageSpeed == nil || got.PageSpeed.Accessibility != 91 || !got.Status {
		t.Fatalf("pagespeed check not round-tripped: %+v", got)
	}

	got, err = s.LatestCheck(ctx, "M", "distributed")
	if err != nil {
		t.Fatalf("LatestCheck distributed: %v", err)
	}
	if got.Distributed == nil || got.Distributed.City != "Muzaffargarh" || got.Timings.FirstByte != 425133400 {
		t.Fatalf("distributed check not round-tripped: %+v", got)
	}

	if _, err := s.LatestCheck(ctx, "M", "hardware"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound for missing kind, got %v", err)
	}
}

func TestSQLiteStore_NotificationCounters(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mon := &domain.Monitor{Name: "hw", Type: domain.TypeHardware, URL: "http://hw"}
	if err := s.AddMonitor(ctx, mon); err != nil {
		t.Fatalf("AddMonitor: %v", err)
	}
	n := &domain.Notification{
		MonitorID:      mon.ID,
		Type:           domain.NotificationWebhook,
		Platform:       domain.PlatformSlack,
		Config:         domain.WebhookConfig{WebhookURL: "https://hooks.slack.test/x"},
		AlertThreshold: 4,
	}
	n.ResetCounters()
	if err := s.AddNotification(ctx, n); err != nil {
		t.Fatalf("AddNotification: %v", err)
	}

	list, err := s.GetNotificationsByMonitorID(ctx, mon.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("GetNotificationsByMonitorID: %v %d", err, len(list))
	}
	if list[0].Config.WebhookURL != "https://hooks.slack.test/x" || list[0].MemoryAlertThreshold != 4 {
		t.Fatalf("notification not round-tripped: %+v", list[0])
	}

	list[0].MemoryAlertThreshold = 2
	if err := s.SaveNotification(ctx, list[0]); err != nil {
		t.Fatalf("SaveNotification: %v", err)
	}
	list, _ = s.GetNotificationsByMonitorID(ctx, mon.ID)
	if list[0].MemoryAlertThreshold != 2 {
		t.Fatalf("counter not saved: %+v", list[0])
	}
}
