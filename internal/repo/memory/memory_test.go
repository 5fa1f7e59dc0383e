package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/guregu/null/v5"

	"github.com/hamed0406/uptimecore/internal/domain"
)

func TestMemoryStore_MonitorRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()

	cpu := 0.7
	mon := &domain.Monitor{
		Name:       "box",
		Type:       domain.TypeHardware,
		URL:        "http://box/metrics",
		Thresholds: &domain.Thresholds{UsageCPU: &cpu},
	}
	if err := s.AddMonitor(ctx, mon); err != nil {
		t.Fatalf("AddMonitor: %v", err)
	}
	if mon.ID == "" {
		t.Fatalf("expected monitor ID to be set")
	}

	got, err := s.GetMonitorByID(ctx, mon.ID)
	if err != nil {
		t.Fatalf("GetMonitorByID: %v", err)
	}
	// mutating the copy must not leak into the store
	got.Status = null.BoolFrom(true)
	*got.Thresholds.UsageCPU = 0.1

	again, _ := s.GetMonitorByID(ctx, mon.ID)
	if again.Status.Valid || *again.Thresholds.UsageCPU != 0.7 {
		t.Fatalf("store state leaked: %+v", again)
	}

	if err := s.SaveMonitor(ctx, got); err != nil {
		t.Fatalf("SaveMonitor: %v", err)
	}
	again, _ = s.GetMonitorByID(ctx, mon.ID)
	if !again.Status.Valid || !again.Status.Bool {
		t.Fatalf("status not saved: %+v", again.Status)
	}

	list, err := s.ListMonitors(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListMonitors: %v %d", err, len(list))
	}
}

func TestMemoryStore_UnknownMonitor(t *testing.T) {
	s := New()
	_, err := s.GetMonitorByID(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	err = s.SaveMonitor(context.Background(), &domain.Monitor{ID: "nope"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound on save, got %v", err)
	}
}

func TestMemoryStore_ChecksAreRoutedByKind(t *testing.T) {
	ctx := context.Background()
	s := New()

	_ = s.CreateCheck(ctx, &domain.Check{MonitorID: "A"})
	_ = s.CreatePageSpeedCheck(ctx, &domain.Check{MonitorID: "A"})
	_ = s.CreateHardwareCheck(ctx, &domain.Check{MonitorID: "B"})
	_ = s.CreateDistributedCheck(ctx, &domain.Check{MonitorID: "A"})

	got := s.Checks("A")
	if len(got) != 3 {
		t.Fatalf("want 3 checks for A, got %d", len(got))
	}
	want := []CheckKind{KindCheck, KindPageSpeed, KindDistributed}
	for i, k := range want {
		if got[i].Kind != k {
			t.Fatalf("check %d kind=%s want %s", i, got[i].Kind, k)
		}
		if got[i].Check.ID == "" || got[i].Check.CreatedAt.IsZero() {
			t.Fatalf("check %d missing id/created_at", i)
		}
	}
}

func TestMemoryStore_CheckHistoryIsBounded(t *testing.T) {
	ctx := context.Background()
	s := NewWithHistory(3)

	for i := 1; i <= 5; i++ {
		_ = s.CreateCheck(ctx, &domain.Check{MonitorID: "A", StatusCode: i})
	}
	_ = s.CreateCheck(ctx, &domain.Check{MonitorID: "B", StatusCode: 9})

	got := s.Checks("A")
	if len(got) != 3 {
		t.Fatalf("want 3 checks kept, got %d", len(got))
	}
	for i, code := range []int{3, 4, 5} {
		if got[i].Check.StatusCode != code {
			t.Fatalf("check %d code=%d want %d (oldest dropped first)", i, got[i].Check.StatusCode, code)
		}
	}
	if len(s.Checks("B")) != 1 {
		t.Fatalf("history is per monitor")
	}
}

func TestMemoryStore_Notifications(t *testing.T) {
	ctx := context.Background()
	s := New()

	n := &domain.Notification{MonitorID: "M", Type: domain.NotificationEmail, AlertThreshold: 3}
	n.ResetCounters()
	if err := s.AddNotification(ctx, n); err != nil {
		t.Fatalf("AddNotification: %v", err)
	}
	_ = s.AddNotification(ctx, &domain.Notification{MonitorID: "other"})

	list, err := s.GetNotificationsByMonitorID(ctx, "M")
	if err != nil || len(list) != 1 {
		t.Fatalf("GetNotificationsByMonitorID: %v %d", err, len(list))
	}
	list[0].CPUAlertThreshold = 1
	if err := s.SaveNotification(ctx, list[0]); err != nil {
		t.Fatalf("SaveNotification: %v", err)
	}
	list, _ = s.GetNotificationsByMonitorID(ctx, "M")
	if list[0].CPUAlertThreshold != 1 {
		t.Fatalf("counter not persisted: %+v", list[0])
	}
}
