package repo

import (
	"context"

	"github.com/hamed0406/uptimecore/internal/domain"
)

// MonitorStore loads and saves monitors. The memory, postgres and sqlite
// adapters implement every port in this package.
type MonitorStore interface {
	// GetMonitorByID returns domain.ErrNotFound (wrapped) when the id is unknown.
	GetMonitorByID(ctx context.Context, id string) (*domain.Monitor, error)
	SaveMonitor(ctx context.Context, m *domain.Monitor) error
	ListMonitors(ctx context.Context) ([]*domain.Monitor, error)
}

// CheckStore persists checks. The operation is chosen by monitor type.
type CheckStore interface {
	CreateCheck(ctx context.Context, c *domain.Check) error
	CreatePageSpeedCheck(ctx context.Context, c *domain.Check) error
	CreateHardwareCheck(ctx context.Context, c *domain.Check) error
	CreateDistributedCheck(ctx context.Context, c *domain.Check) error
}

type NotificationStore interface {
	GetNotificationsByMonitorID(ctx context.Context, monitorID string) ([]*domain.Notification, error)
	// SaveNotification persists the hysteresis counters of n.
	SaveNotification(ctx context.Context, n *domain.Notification) error
}

// Seeder loads monitors and notifications at startup.
type Seeder interface {
	AddMonitor(ctx context.Context, m *domain.Monitor) error
	AddNotification(ctx context.Context, n *domain.Notification) error
}

// Store is everything the service needs from persistence.
type Store interface {
	MonitorStore
	CheckStore
	NotificationStore
	Seeder
	Close() error
}
