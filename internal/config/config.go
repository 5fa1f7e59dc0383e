package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr        string // API bind address, e.g., "127.0.0.1:8080" or ":8080" in containers
	LogDir      string
	LogLevel    string
	DatabaseURL string // postgres://..., sqlite://path, or empty for the in-memory store

	CheckInterval       time.Duration // 0 disables the scheduler
	CheckTimeout        time.Duration // whole probe budget per monitor
	HTTPTimeout         time.Duration // HTTP client timeout for http, hardware and pagespeed
	MaxConcurrentChecks int

	PingPrivileged  bool
	DockerHost      string
	PagespeedAPIKey string

	UpRockEndpoint string
	UpRockAPIKey   string
	CallbackURL    string // public base URL the probe network calls back

	TelegramAPIBase string
	SMTP            SMTP

	ReadAPIKeys    []string
	AdminAPIKeys   []string
	CallbackRPM    int
	CallbackBurst  int
	TrustedProxies []string // peers whose X-Forwarded-For is believed

	MonitorsFile string // optional YAML seed
}

type SMTP struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Enabled reports whether email delivery is configured.
func (s SMTP) Enabled() bool { return s.Host != "" }

func FromEnv() Config {
	return Config{
		Addr:        envOr("API_ADDR", "127.0.0.1:8080"),
		LogDir:      envOr("LOG_DIR", "logs"),
		LogLevel:    envOr("LOG_LEVEL", "info"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		CheckInterval:       envMillis("CHECK_INTERVAL_MS", 60*time.Second),
		CheckTimeout:        envMillis("CHECK_TIMEOUT_MS", 30*time.Second),
		HTTPTimeout:         envMillis("HTTP_TIMEOUT_MS", 10*time.Second),
		MaxConcurrentChecks: envInt("MAX_CONCURRENT_CHECKS", 8),

		PingPrivileged:  envBool("PING_PRIVILEGED", false),
		DockerHost:      os.Getenv("DOCKER_HOST"),
		PagespeedAPIKey: os.Getenv("PAGESPEED_API_KEY"),

		UpRockEndpoint: envOr("UPROCK_ENDPOINT", "https://api.uprock.com/checkmate/push"),
		UpRockAPIKey:   os.Getenv("UPROCK_API_KEY"),
		CallbackURL:    os.Getenv("CALLBACK_URL"),

		TelegramAPIBase: envOr("TELEGRAM_API_BASE", "https://api.telegram.org"),
		SMTP: SMTP{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     envInt("SMTP_PORT", 587),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     envOr("SMTP_FROM", "uptime@localhost"),
		},

		ReadAPIKeys:    envList("READ_API_KEYS"),
		AdminAPIKeys:   envList("ADMIN_API_KEYS"),
		CallbackRPM:    envInt("CALLBACK_RPM", 120),
		CallbackBurst:  envInt("CALLBACK_BURST", 20),
		TrustedProxies: envList("TRUSTED_PROXIES"),

		MonitorsFile: os.Getenv("MONITORS_FILE"),
	}
}

// StoreKind is "postgres", "sqlite" or "memory" depending on DatabaseURL.
func (c Config) StoreKind() string {
	switch {
	case strings.HasPrefix(c.DatabaseURL, "postgres://"), strings.HasPrefix(c.DatabaseURL, "postgresql://"):
		return "postgres"
	case strings.HasPrefix(c.DatabaseURL, "sqlite://"):
		return "sqlite"
	default:
		return "memory"
	}
}

// SQLitePath is the file path of a sqlite:// DatabaseURL.
func (c Config) SQLitePath() string {
	return strings.TrimPrefix(c.DatabaseURL, "sqlite://")
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func envMillis(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envList(key string) []string {
	var out []string
	for _, s := range strings.Split(os.Getenv(key), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
