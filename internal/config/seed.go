package config

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hamed0406/uptimecore/internal/domain"
	"github.com/hamed0406/uptimecore/internal/repo"
)

const defaultAlertThreshold = 5

// Seed is the YAML file of monitors loaded into the store at startup.
// ${VAR} references are expanded from the environment before parsing.
type Seed struct {
	Monitors []SeedMonitor `yaml:"monitors"`
}

type SeedMonitor struct {
	ID            string             `yaml:"id"`
	TeamID        string             `yaml:"team_id"`
	Name          string             `yaml:"name"`
	Type          domain.MonitorType `yaml:"type"`
	URL           string             `yaml:"url"`
	Port          int                `yaml:"port"`
	Secret        string             `yaml:"secret"`
	JSONPath      string             `yaml:"json_path"`
	MatchMethod   domain.MatchMethod `yaml:"match_method"`
	ExpectedValue string             `yaml:"expected_value"`
	Thresholds    *SeedThresholds    `yaml:"thresholds"`
	Notifications []SeedNotification `yaml:"notifications"`
}

type SeedThresholds struct {
	CPU    *float64 `yaml:"usage_cpu"`
	Memory *float64 `yaml:"usage_memory"`
	Disk   *float64 `yaml:"usage_disk"`
}

type SeedNotification struct {
	ID             string                  `yaml:"id"`
	Type           domain.NotificationType `yaml:"type"`
	Address        string                  `yaml:"address"`
	Platform       domain.Platform         `yaml:"platform"`
	WebhookURL     string                  `yaml:"webhook_url"`
	BotToken       string                  `yaml:"bot_token"`
	ChatID         string                  `yaml:"chat_id"`
	AlertThreshold int                     `yaml:"alert_threshold"`
}

func LoadSeed(path string) (*Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	var s Seed
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(raw))), &s); err != nil {
		return nil, fmt.Errorf("parse seed %s: %w", path, err)
	}
	for i, m := range s.Monitors {
		if m.Name == "" || m.Type == "" {
			return nil, fmt.Errorf("seed %s: monitor %d needs name and type", path, i)
		}
	}
	return &s, nil
}

// Apply upserts every monitor and its notifications.
func (s *Seed) Apply(ctx context.Context, dst repo.Seeder) error {
	for _, sm := range s.Monitors {
		m := sm.Monitor()
		if err := dst.AddMonitor(ctx, m); err != nil {
			return fmt.Errorf("seed monitor %s: %w", sm.Name, err)
		}
		for _, sn := range sm.Notifications {
			n := sn.Notification(m.ID)
			if err := dst.AddNotification(ctx, n); err != nil {
				return fmt.Errorf("seed notification for %s: %w", sm.Name, err)
			}
		}
	}
	return nil
}

func (sm SeedMonitor) Monitor() *domain.Monitor {
	m := &domain.Monitor{
		ID:            sm.ID,
		TeamID:        sm.TeamID,
		Name:          sm.Name,
		Type:          sm.Type,
		URL:           sm.URL,
		Port:          sm.Port,
		Secret:        sm.Secret,
		JSONPath:      sm.JSONPath,
		MatchMethod:   sm.MatchMethod,
		ExpectedValue: sm.ExpectedValue,
	}
	if t := sm.Thresholds; t != nil {
		m.Thresholds = &domain.Thresholds{UsageCPU: t.CPU, UsageMemory: t.Memory, UsageDisk: t.Disk}
	}
	return m
}

func (sn SeedNotification) Notification(monitorID string) *domain.Notification {
	n := &domain.Notification{
		ID:             sn.ID,
		MonitorID:      monitorID,
		Type:           sn.Type,
		Address:        sn.Address,
		Platform:       sn.Platform,
		Config:         domain.WebhookConfig{WebhookURL: sn.WebhookURL, BotToken: sn.BotToken, ChatID: sn.ChatID},
		AlertThreshold: sn.AlertThreshold,
	}
	if n.AlertThreshold <= 0 {
		n.AlertThreshold = defaultAlertThreshold
	}
	n.ResetCounters()
	return n
}
