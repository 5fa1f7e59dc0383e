package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/guregu/null/v5"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimecore/internal/domain"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping Postgres integration test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := New(ctx, dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("New store: %v", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPostgresStore_MonitorStatusAndChecks(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	mem := 0.9
	mon := &domain.Monitor{
		ID:         fmt.Sprintf("pg-test-%d", time.Now().UTC().UnixNano()),
		Name:       "pg",
		Type:       domain.TypeHardware,
		URL:        "http://host/api/v1/metrics",
		Thresholds: &domain.Thresholds{UsageMemory: &mem},
	}
	if err := store.AddMonitor(ctx, mon); err != nil {
		t.Fatalf("AddMonitor: %v", err)
	}

	got, err := store.GetMonitorByID(ctx, mon.ID)
	if err != nil {
		t.Fatalf("GetMonitorByID: %v", err)
	}
	if got.Status.Valid {
		t.Fatalf("new monitor should have unknown status")
	}
	if got.Thresholds == nil || got.Thresholds.Memory() != 0.9 || got.Thresholds.CPU() != -1 {
		t.Fatalf("thresholds not round-tripped: %+v", got.Thresholds)
	}

	got.Status = null.BoolFrom(false)
	if err := store.SaveMonitor(ctx, got); err != nil {
		t.Fatalf("SaveMonitor: %v", err)
	}
	got, _ = store.GetMonitorByID(ctx, mon.ID)
	if !got.Status.Valid || got.Status.Bool {
		t.Fatalf("want down status, got %+v", got.Status)
	}

	c := &domain.Check{
		MonitorID:  mon.ID,
		Type:       domain.TypeHardware,
		StatusCode: 200,
		Hardware:   &domain.HardwareDetails{Disk: []domain.DiskMetrics{}, Errors: []domain.HardwareError{}},
	}
	if err := store.CreateHardwareCheck(ctx, c); err != nil {
		t.Fatalf("CreateHardwareCheck: %v", err)
	}
	n, err := store.CountChecks(ctx, "hardware_checks", mon.ID)
	if err != nil || n != 1 {
		t.Fatalf("CountChecks: n=%d err=%v", n, err)
	}

	if _, err := store.GetMonitorByID(ctx, mon.ID+"-missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestPostgresStore_NotificationCounters(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	mon := &domain.Monitor{ID: fmt.Sprintf("pg-notif-%d", time.Now().UTC().UnixNano()), Name: "n", Type: domain.TypeHTTP, URL: "https://example.com"}
	if err := store.AddMonitor(ctx, mon); err != nil {
		t.Fatalf("AddMonitor: %v", err)
	}
	n := &domain.Notification{
		MonitorID:      mon.ID,
		Type:           domain.NotificationWebhook,
		Platform:       domain.PlatformTelegram,
		Config:         domain.WebhookConfig{BotToken: "t", ChatID: "42"},
		AlertThreshold: 3,
	}
	n.ResetCounters()
	if err := store.AddNotification(ctx, n); err != nil {
		t.Fatalf("AddNotification: %v", err)
	}

	list, err := store.GetNotificationsByMonitorID(ctx, mon.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("GetNotificationsByMonitorID: %v %d", err, len(list))
	}
	if list[0].Config.ChatID != "42" {
		t.Fatalf("config not round-tripped: %+v", list[0].Config)
	}
	list[0].DiskAlertThreshold = 1
	if err := store.SaveNotification(ctx, list[0]); err != nil {
		t.Fatalf("SaveNotification: %v", err)
	}
	list, _ = store.GetNotificationsByMonitorID(ctx, mon.ID)
	if list[0].DiskAlertThreshold != 1 || list[0].CPUAlertThreshold != 3 {
		t.Fatalf("counters not persisted: %+v", list[0])
	}
}
