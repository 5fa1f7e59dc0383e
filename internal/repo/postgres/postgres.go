package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimecore/internal/domain"
	"github.com/hamed0406/uptimecore/internal/repo"
)

var _ repo.Store = (*Store)(nil)

// Schema creates every table the store uses. It is safe to apply repeatedly.
var Schema = `
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
  thresholds     JSONB NULL,
  status         BOOLEAN NULL,
  created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS notifications (
  id                     TEXT PRIMARY KEY,
  monitor_id             TEXT NOT NULL REFERENCES monitors(id) ON DELETE CASCADE,
  type                   TEXT NOT NULL,
  address                TEXT NOT NULL DEFAULT '',
  platform               TEXT NOT NULL DEFAULT '',
  config                 JSONB NOT NULL DEFAULT '{}',
  alert_threshold        INTEGER NOT NULL DEFAULT 5,
  cpu_alert_threshold    INTEGER NOT NULL DEFAULT 5,
  memory_alert_threshold INTEGER NOT NULL DEFAULT 5,
  disk_alert_threshold   INTEGER NOT NULL DEFAULT 5
);
CREATE INDEX IF NOT EXISTS idx_notifications_monitor ON notifications (monitor_id);
` + checkTable("checks") + checkTable("pagespeed_checks") + checkTable("hardware_checks") + checkTable("distributed_checks")

func checkTable(name string) string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s (
  id            TEXT PRIMARY KEY,
  monitor_id    TEXT NOT NULL,
  team_id       TEXT NOT NULL DEFAULT '',
  status        BOOLEAN NOT NULL,
  status_code   INTEGER NOT NULL,
  response_time BIGINT NOT NULL,
  message       TEXT NOT NULL DEFAULT '',
  timings       JSONB NULL,
  details       JSONB NULL,
  created_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_%[1]s_monitor_time ON %[1]s (monitor_id, created_at DESC);
`, name)
}

type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
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
	_, err = s.pool.Exec(ctx,
		`INSERT INTO monitors (`+monitorColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		 ON CONFLICT (id) DO UPDATE SET
		   team_id=EXCLUDED.team_id, name=EXCLUDED.name, type=EXCLUDED.type, url=EXCLUDED.url,
		   port=EXCLUDED.port, secret=EXCLUDED.secret, json_path=EXCLUDED.json_path,
		   match_method=EXCLUDED.match_method, expected_value=EXCLUDED.expected_value,
		   thresholds=EXCLUDED.thresholds`,
		m.ID, m.TeamID, m.Name, string(m.Type), m.URL, m.Port, m.Secret, m.JSONPath,
		string(m.MatchMethod), m.ExpectedValue, th, m.Status, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert monitor: %w", err)
	}
	return nil
}

func scanMonitor(row pgx.Row) (*domain.Monitor, error) {
	var (
		m           domain.Monitor
		typ, method string
		th          []byte
	)
	if err := row.Scan(&m.ID, &m.TeamID, &m.Name, &typ, &m.URL, &m.Port, &m.Secret, &m.JSONPath,
		&method, &m.ExpectedValue, &th, &m.Status, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Type = domain.MonitorType(typ)
	m.MatchMethod = domain.MatchMethod(method)
	thresholds, err := repo.ScanJSON[domain.Thresholds](th)
	if err != nil {
		return nil, err
	}
	m.Thresholds = thresholds
	return &m, nil
}

func (s *Store) GetMonitorByID(ctx context.Context, id string) (*domain.Monitor, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+monitorColumns+` FROM monitors WHERE id = $1`, id)
	m, err := scanMonitor(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("monitor %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get monitor %s: %w", id, err)
	}
	return m, nil
}

// SaveMonitor only writes status; the rest of the monitor is owned by the
// administrative layer.
func (s *Store) SaveMonitor(ctx context.Context, m *domain.Monitor) error {
	tag, err := s.pool.Exec(ctx, `UPDATE monitors SET status = $2 WHERE id = $1`, m.ID, m.Status)
	if err != nil {
		return fmt.Errorf("save monitor %s: %w", m.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("monitor %s: %w", m.ID, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) ListMonitors(ctx context.Context) ([]*domain.Monitor, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+monitorColumns+` FROM monitors ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list monitors: %w", err)
	}
	defer rows.Close()

	var out []*domain.Monitor
	for rows.Next() {
		m, err := scanMonitor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan monitor: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ---- CheckStore ----

func (s *Store) insertCheck(ctx context.Context, table string, c *domain.Check) error {
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
	_, err = s.pool.Exec(ctx,
		`INSERT INTO `+table+`
		   (id, monitor_id, team_id, status, status_code, response_time, message, timings, details, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		c.ID, c.MonitorID, c.TeamID, c.Status, c.StatusCode, c.ResponseTime, c.Message, timings, details, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

func (s *Store) CreateCheck(ctx context.Context, c *domain.Check) error {
	return s.insertCheck(ctx, "checks", c)
}

func (s *Store) CreatePageSpeedCheck(ctx context.Context, c *domain.Check) error {
	return s.insertCheck(ctx, "pagespeed_checks", c)
}

func (s *Store) CreateHardwareCheck(ctx context.Context, c *domain.Check) error {
	return s.insertCheck(ctx, "hardware_checks", c)
}

func (s *Store) CreateDistributedCheck(ctx context.Context, c *domain.Check) error {
	return s.insertCheck(ctx, "distributed_checks", c)
}

// CountChecks is used by integration tests and operators.
func (s *Store) CountChecks(ctx context.Context, table, monitorID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM `+pgx.Identifier{table}.Sanitize()+` WHERE monitor_id = $1`, monitorID).Scan(&n)
	return n, err
}
