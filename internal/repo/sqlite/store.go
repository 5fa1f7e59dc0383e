package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/guregu/null/v5"
	_ "modernc.org/sqlite"

	"github.com/hamed0406/uptimecore/internal/domain"
	"github.com/hamed0406/uptimecore/internal/repo"
)

var _ repo.Store = (*Store)(nil)

// Store implements repo.Store on a single SQLite file.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database file and migrates the schema.
func New(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path))
	if err != nil {
		return nil, fmt.Errorf("unable to open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS monitors (
	id             TEXT PRIMARY KEY,
	team_id        TEXT NOT NULL DEFAULT '',
	name           TEXT NOT NULL,
	type           TEXT NOT NULL,
	url            TEXT NOT NULL,
	port           INTEGER NOT NULL DEFAULT 0,
	secret         TEXT NOT NULL DEFAULT '',
	json_path      TEXT NOT NULL DEFAULT '',
	match_method   TEXT NOT NULL DEFAULT '',
	expected_value TEXT NOT NULL DEFAULT '',
	thresholds     TEXT,
	status         INTEGER,
	created_at     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS notifications (
	id                     TEXT PRIMARY KEY,
	monitor_id             TEXT NOT NULL,
	type                   TEXT NOT NULL,
	address                TEXT NOT NULL DEFAULT '',
	platform               TEXT NOT NULL DEFAULT '',
	config                 TEXT NOT NULL DEFAULT '{}',
	alert_threshold        INTEGER NOT NULL DEFAULT 5,
	cpu_alert_threshold    INTEGER NOT NULL DEFAULT 5,
	memory_alert_threshold INTEGER NOT NULL DEFAULT 5,
	disk_alert_threshold   INTEGER NOT NULL DEFAULT 5,
	FOREIGN KEY(monitor_id) REFERENCES monitors(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_notifications_monitor ON notifications (monitor_id);

CREATE TABLE IF NOT EXISTS checks (
	id            TEXT PRIMARY KEY,
	kind          TEXT NOT NULL,
	monitor_id    TEXT NOT NULL,
	team_id       TEXT NOT NULL DEFAULT '',
	status        INTEGER NOT NULL,
	status_code   INTEGER NOT NULL,
	response_time INTEGER NOT NULL,
	message       TEXT NOT NULL DEFAULT '',
	timings       TEXT,
	details       TEXT,
	created_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_checks_monitor_kind_time ON checks (monitor_id, kind, created_at DESC);
`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// nullableText stores JSON as TEXT, mapping nil to NULL.
func nullableText(b []byte) any {
	if b == nil {
		return nil
	}
	return string(b)
}

// ---- MonitorStore ----

const monitorColumns = `id, team_id, name, type, url, port, secret, json_path, match_method, expected_value, thresholds, status, created_at`

func (s *Store) AddMonitor(ctx context.Context, m *domain.Monitor) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	th, err := repo.NullableJSON(m.Thresholds)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO monitors (`+monitorColumns+`)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
		 ON CONFLICT(id) DO UPDATE SET
		   team_id=excluded.team_id, name=excluded.name, type=excluded.type, url=excluded.url,
		   port=excluded.port, secret=excluded.secret, json_path=excluded.json_path,
		   match_method=excluded.match_method, expected_value=excluded.expected_value,
		   thresholds=excluded.thresholds`,
		m.ID, m.TeamID, m.Name, string(m.Type), m.URL, m.Port, m.Secret, m.JSONPath,
		string(m.MatchMethod), m.ExpectedValue, nullableText(th), m.Status,
		m.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert monitor: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMonitor(row scanner) (*domain.Monitor, error) {
	var (
		m           domain.Monitor
		typ, method string
		th          sql.NullString
		status      null.Bool
		createdAt   string
	)
	if err := row.Scan(&m.ID, &m.TeamID, &m.Name, &typ, &m.URL, &m.Port, &m.Secret, &m.JSONPath,
		&method, &m.ExpectedValue, &th, &status, &createdAt); err != nil {
		return nil, err
	}
	m.Type = domain.MonitorType(typ)
	m.MatchMethod = domain.MatchMethod(method)
	m.Status = status
	if th.Valid {
		thresholds, err := repo.ScanJSON[domain.Thresholds]([]byte(th.String))
		if err != nil {
			return nil, err
		}
		m.Thresholds = thresholds
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	m.CreatedAt = t
	return &m, nil
}

func (s *Store) GetMonitorByID(ctx context.Context, id string) (*domain.Monitor, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+monitorColumns+` FROM monitors WHERE id = ?`, id)
	m, err := scanMonitor(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("monitor %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get monitor %s: %w", id, err)
	}
	return m, nil
}

func (s *Store) SaveMonitor(ctx context.Context, m *domain.Monitor) error {
	res, err := s.db.ExecContext(ctx, `UPDATE monitors SET status = ? WHERE id = ?`, m.Status, m.ID)
	if err != nil {
		return fmt.Errorf("failed to save monitor %s: %w", m.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("monitor %s: %w", m.ID, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) ListMonitors(ctx context.Context) ([]*domain.Monitor, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+monitorColumns+` FROM monitors ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list monitors: %w", err)
	}
	defer rows.Close()

	var out []*domain.Monitor
	for rows.Next() {
		m, err := scanMonitor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan monitor: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ---- CheckStore ----

func (s *Store) insertCheck(ctx context.Context, kind string, c *domain.Check) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	timings, err := repo.NullableJSON(c.Timings)
	if err != nil {
		return err
	}
	details, err := repo.CheckDetails(c)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO checks
		   (id, kind, monitor_id, team_id, status, status_code, response_time, message, timings, details, created_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		c.ID, kind, c.MonitorID, c.TeamID, c.Status, c.StatusCode, c.ResponseTime, c.Message,
		nullableText(timings), nullableText(details), c.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert %s check: %w", kind, err)
	}
	return nil
}

func (s *Store) CreateCheck(ctx context.Context, c *domain.Check) error {
	return s.insertCheck(ctx, "check", c)
}

func (s *Store) CreatePageSpeedCheck(ctx context.Context, c *domain.Check) error {
	return s.insertCheck(ctx, "pagespeed", c)
}

func (s *Store) CreateHardwareCheck(ctx context.Context, c *domain.Check) error {
	return s.insertCheck(ctx, "hardware", c)
}

func (s *Store) CreateDistributedCheck(ctx context.Context, c *domain.Check) error {
	return s.insertCheck(ctx, "distributed", c)
}

// LatestCheck returns the newest check of kind for a monitor, decoding its
// type-specific section back into the matching variant.
func (s *Store) LatestCheck(ctx context.Context, monitorID, kind string) (*domain.Check, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, monitor_id, team_id, status, status_code, response_time, message, timings, details, created_at
		   FROM checks
		  WHERE monitor_id = ? AND kind = ?
		  ORDER BY created_at DESC
		  LIMIT 1`, monitorID, kind)
	var (
		c                domain.Check
		timings, details sql.NullString
		createdAt        string
	)
	err := row.Scan(&c.ID, &c.MonitorID, &c.TeamID, &c.Status, &c.StatusCode, &c.ResponseTime,
		&c.Message, &timings, &details, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s check for %s: %w", kind, monitorID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get latest check: %w", err)
	}
	if c.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if timings.Valid {
		if c.Timings, err = repo.ScanJSON[domain.Timings]([]byte(timings.String)); err != nil {
			return nil, err
		}
	}
	if details.Valid {
		raw := []byte(details.String)
		switch kind {
		case "pagespeed":
			c.PageSpeed, err = repo.ScanJSON[domain.PageSpeedDetails](raw)
		case "hardware":
			c.Hardware, err = repo.ScanJSON[domain.HardwareDetails](raw)
		case "distributed":
			c.Distributed, err = repo.ScanJSON[domain.DistributedDetails](raw)
		}
		if err != nil {
			return nil, err
		}
	}
	return &c, nil
}

// ---- NotificationStore ----

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
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO notifications (`+notificationColumns+`)
		 VALUES (?,?,?,?,?,?,?,?,?,?)
		 ON CONFLICT(id) DO UPDATE SET
		   type=excluded.type, address=excluded.address, platform=excluded.platform,
		   config=excluded.config, alert_threshold=excluded.alert_threshold`,
		n.ID, n.MonitorID, string(n.Type), n.Address, string(n.Platform), string(cfg),
		n.AlertThreshold, n.CPUAlertThreshold, n.MemoryAlertThreshold, n.DiskAlertThreshold,
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

func (s *Store) GetNotificationsByMonitorID(ctx context.Context, monitorID string) ([]*domain.Notification, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE monitor_id = ? ORDER BY id`, monitorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var out []*domain.Notification
	for rows.Next() {
		var (
			n             domain.Notification
			typ, platform string
			cfg           string
		)
		if err := rows.Scan(&n.ID, &n.MonitorID, &typ, &n.Address, &platform, &cfg,
			&n.AlertThreshold, &n.CPUAlertThreshold, &n.MemoryAlertThreshold, &n.DiskAlertThreshold); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.Type = domain.NotificationType(typ)
		n.Platform = domain.Platform(platform)
		if err := json.Unmarshal([]byte(cfg), &n.Config); err != nil {
			return nil, fmt.Errorf("notification %s config: %w", n.ID, err)
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

func (s *Store) SaveNotification(ctx context.Context, n *domain.Notification) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications
		    SET cpu_alert_threshold=?, memory_alert_threshold=?, disk_alert_threshold=?
		  WHERE id=?`,
		n.CPUAlertThreshold, n.MemoryAlertThreshold, n.DiskAlertThreshold, n.ID)
	if err != nil {
		return fmt.Errorf("failed to save notification %s: %w", n.ID, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("notification %s: %w", n.ID, domain.ErrNotFound)
	}
	return nil
}
