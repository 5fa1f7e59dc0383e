// cmd/preflight/main.go
package main

import (
	"fmt"
	"net/url"
	"os"

	"github.com/joho/godotenv"

	"github.com/hamed0406/uptimecore/internal/config"
)

func main() {
	_ = godotenv.Load()

	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	cfg := config.FromEnv()

	if len(cfg.AdminAPIKeys) == 0 {
		fail("ADMIN_API_KEYS is empty (the notification trigger would be open to anyone).")
	}
	ok(fmt.Sprintf("%d admin key(s)", len(cfg.AdminAPIKeys)))

	ok("API_ADDR=" + cfg.Addr)
	ok("store=" + cfg.StoreKind())
	if cfg.StoreKind() == "memory" {
		warn("DATABASE_URL empty; monitor state and checks are lost on restart.")
	}

	if cfg.CheckInterval == 0 {
		warn("CHECK_INTERVAL_MS=0; the scheduler is disabled.")
	}

	switch {
	case cfg.UpRockAPIKey == "" && cfg.CallbackURL == "":
		warn("UPROCK_API_KEY and CALLBACK_URL empty; distributed_http monitors will not run.")
	case cfg.UpRockAPIKey == "" || cfg.CallbackURL == "":
		fail("UPROCK_API_KEY and CALLBACK_URL must be set together.")
	default:
		if u, err := url.Parse(cfg.CallbackURL); err != nil || u.Scheme == "" || u.Host == "" {
			fail("CALLBACK_URL must be an absolute URL reachable by the probe network.")
		}
		ok("distributed probes enabled")
	}

	if cfg.SMTP.Enabled() {
		ok(fmt.Sprintf("SMTP %s:%d", cfg.SMTP.Host, cfg.SMTP.Port))
	} else {
		warn("SMTP_HOST empty; email notifications are only logged.")
	}

	if cfg.MonitorsFile != "" {
		seed, err := config.LoadSeed(cfg.MonitorsFile)
		if err != nil {
			fail(err.Error())
		}
		ok(fmt.Sprintf("MONITORS_FILE has %d monitor(s)", len(seed.Monitors)))
	}

	ok("preflight passed")
}
