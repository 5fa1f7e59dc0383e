package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hamed0406/uptimecore/internal/domain"
)

const notificationColumns = `id, monitor_id, type, address, platform, config,
  alert_threshold, cpu_alert_threshold, memory_alert_threshold, disk_alert_threshold`

func (s *Store) AddNotification(ctx context.Context, n *domain.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	cfg, err := json.Marshal(n.Config)
	if err != nil {
		return fmt.Errorf("marshal notification config: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO notifications (`+notificationColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		 ON CONFLICT (id) DO UPDATE SET
		   type=EXCLUDED.type, address=EXCLUDED.address, platform=EXCLUDED.platform,
		   config=EXCLUDED.config, alert_threshold=EXCLUDED.alert_threshold`,
		n.ID, n.MonitorID, string(n.Type), n.Address, string(n.Platform), cfg,
		n.AlertThreshold, n.CPUAlertThreshold, n.MemoryAlertThreshold, n.DiskAlertThreshold,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *Store) GetNotificationsByMonitorID(ctx context.Context, monitorID string) ([]*domain.Notification, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE monitor_id = $1 ORDER BY id`, monitorID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []*domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var (
		n             domain.Notification
		typ, platform string
		cfg           []byte
	)
	if err := row.Scan(&n.ID, &n.MonitorID, &typ, &n.Address, &platform, &cfg,
		&n.AlertThreshold, &n.CPUAlertThreshold, &n.MemoryAlertThreshold, &n.DiskAlertThreshold); err != nil {
		return nil, err
	}
	n.Type = domain.NotificationType(typ)
	n.Platform = domain.Platform(platform)
	if len(cfg) > 0 {
		if err := json.Unmarshal(cfg, &n.Config); err != nil {
			return nil, fmt.Errorf("notification %s config: %w", n.ID, err)
		}
	}
	return &n, nil
}

// SaveNotification writes the hysteresis counters only. There is no version
// check; concurrent cycles for one monitor can overwrite each other.
func (s *Store) SaveNotification(ctx context.Context, n *domain.Notification) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE notifications
		    SET cpu_alert_threshold=$2, memory_alert_threshold=$3, disk_alert_threshold=$4
		  WHERE id=$1`,
		n.ID, n.CPUAlertThreshold, n.MemoryAlertThreshold, n.DiskAlertThreshold)
	if err != nil {
		return fmt.Errorf("save notification %s: %w", n.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("notification %s: %w", n.ID, domain.ErrNotFound)
	}
	return nil
}
