package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hamed0406/uptimecore/internal/domain"
	"github.com/hamed0406/uptimecore/internal/repo"
)

// CheckKind records which type-routed insert stored a check.
type CheckKind string

const (
	KindCheck       CheckKind = "check"
	KindPageSpeed   CheckKind = "pagespeed"
	KindHardware    CheckKind = "hardware"
	KindDistributed CheckKind = "distributed"
)

type StoredCheck struct {
	Kind  CheckKind
	Check domain.Check
}

// DefaultCheckHistory is how many checks New keeps per monitor.
const DefaultCheckHistory = 1000

// Store keeps everything in process memory. Values are copied in and out so
// callers never share state with the store. Only the newest checks of each
// monitor are kept.
type Store struct {
	mu            sync.RWMutex
	monitors      map[string]domain.Monitor
	notifications map[string]domain.Notification
	checks        map[string][]StoredCheck
	history       int
}

var _ repo.Store = (*Store)(nil)

func New() *Store {
	return NewWithHistory(DefaultCheckHistory)
}

// NewWithHistory keeps at most n checks per monitor; n <= 0 uses the default.
func NewWithHistory(n int) *Store {
	if n <= 0 {
		n = DefaultCheckHistory
	}
	return &Store{
		monitors:      make(map[string]domain.Monitor),
		notifications: make(map[string]domain.Notification),
		checks:        make(map[string][]StoredCheck),
		history:       n,
	}
}

func (m *Store) Close() error { return nil }

// ---- MonitorStore ----

func (m *Store) AddMonitor(ctx context.Context, mon *domain.Monitor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mon.ID == "" {
		mon.ID = uuid.NewString()
	}
	if mon.CreatedAt.IsZero() {
		mon.CreatedAt = time.Now().UTC()
	}
	m.monitors[mon.ID] = cloneMonitor(mon)
	return nil
}

func (m *Store) GetMonitorByID(ctx context.Context, id string) (*domain.Monitor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mon, ok := m.monitors[id]
	if !ok {
		return nil, fmt.Errorf("monitor %s: %w", id, domain.ErrNotFound)
	}
	out := cloneMonitor(&mon)
	return &out, nil
}

func (m *Store) SaveMonitor(ctx context.Context, mon *domain.Monitor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.monitors[mon.ID]; !ok {
		return fmt.Errorf("monitor %s: %w", mon.ID, domain.ErrNotFound)
	}
	m.monitors[mon.ID] = cloneMonitor(mon)
	return nil
}

func (m *Store) ListMonitors(ctx context.Context) ([]*domain.Monitor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Monitor, 0, len(m.monitors))
	for _, mon := range m.monitors {
		c := cloneMonitor(&mon)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func cloneMonitor(m *domain.Monitor) domain.Monitor {
	c := *m
	if m.Thresholds != nil {
		th := *m.Thresholds
		c.Thresholds = &th
	}
	return c
}

// ---- CheckStore ----

func (m *Store) appendCheck(kind CheckKind, c *domain.Check) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	list := append(m.checks[c.MonitorID], StoredCheck{Kind: kind, Check: *c})
	if over := len(list) - m.history; over > 0 {
		// shift in place so the backing array stays bounded
		list = append(list[:0], list[over:]...)
	}
	m.checks[c.MonitorID] = list
	return nil
}

func (m *Store) CreateCheck(ctx context.Context, c *domain.Check) error {
	return m.appendCheck(KindCheck, c)
}

func (m *Store) CreatePageSpeedCheck(ctx context.Context, c *domain.Check) error {
	return m.appendCheck(KindPageSpeed, c)
}

func (m *Store) CreateHardwareCheck(ctx context.Context, c *domain.Check) error {
	return m.appendCheck(KindHardware, c)
}

func (m *Store) CreateDistributedCheck(ctx context.Context, c *domain.Check) error {
	return m.appendCheck(KindDistributed, c)
}

// Checks returns the checks stored for a monitor, oldest first.
func (m *Store) Checks(monitorID string) []StoredCheck {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]StoredCheck(nil), m.checks[monitorID]...)
}

// ---- NotificationStore ----

func (m *Store) AddNotification(ctx context.Context, n *domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	m.notifications[n.ID] = *n
	return nil
}

func (m *Store) GetNotificationsByMonitorID(ctx context.Context, monitorID string) ([]*domain.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Notification
	for _, n := range m.notifications {
		if n.MonitorID == monitorID {
			c := n
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Store) SaveNotification(ctx context.Context, n *domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notifications[n.ID]; !ok {
		return fmt.Errorf("notification %s: %w", n.ID, domain.ErrNotFound)
	}
	m.notifications[n.ID] = *n
	return nil
}
