// Package notify decides which alerts a probe cycle produces and
// delivers them by email or chat webhook.
package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimecore/internal/domain"
	"github.com/hamed0406/uptimecore/internal/repo"
)

// Email template names.
const (
	TemplateServerUp         = "server_is_up"
	TemplateServerDown       = "server_is_down"
	TemplateHardwareIncident = "hardware_incident"
)

// EmailSender renders template with data and mails it to one address.
type EmailSender interface {
	SendEmail(ctx context.Context, template string, data any, to, subject string) error
}

// WebhookRequester posts a JSON message to a chat platform.
type WebhookRequester interface {
	RequestWebhook(ctx context.Context, platform domain.Platform, url string, message any) domain.WebhookResult
}

const DefaultTelegramAPIBase = "https://api.telegram.org"

type Engine struct {
	store        repo.NotificationStore
	email        EmailSender
	webhook      WebhookRequester
	telegramBase string
	log          *zap.Logger

	monitorLocks keyedMutex
}

type Option func(*Engine)

// WithTelegramAPIBase points Telegram deliveries at another API host.
func WithTelegramAPIBase(base string) Option {
	return func(e *Engine) {
		if base != "" {
			e.telegramBase = base
		}
	}
}

func New(store repo.NotificationStore, email EmailSender, webhook WebhookRequester, log *zap.Logger, opts ...Option) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{
		store:        store,
		email:        email,
		webhook:      webhook,
		telegramBase: DefaultTelegramAPIBase,
		log:          log,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// HandleNotifications runs the hardware track for hardware monitors and
// then the status-change track. Failures are logged, never returned.
func (e *Engine) HandleNotifications(ctx context.Context, upd domain.StatusUpdate) {
	if upd.Monitor == nil {
		return
	}
	if upd.Monitor.Type == domain.TypeHardware {
		if err := e.HandleHardwareNotifications(ctx, upd); err != nil {
			e.log.Error("hardware_notifications_failed", zap.String("monitor_id", upd.Monitor.ID), zap.Error(err))
		}
	}
	if err := e.HandleStatusNotifications(ctx, upd); err != nil {
		e.log.Error("status_notifications_failed", zap.String("monitor_id", upd.Monitor.ID), zap.Error(err))
	}
}

// HandleStatusNotifications alerts every channel of the monitor on a real
// transition. The first probe of a monitor (unknown previous state) is silent.
func (e *Engine) HandleStatusNotifications(ctx context.Context, upd domain.StatusUpdate) error {
	if !upd.StatusChanged || !upd.PrevStatus.Valid {
		return nil
	}
	m := upd.Monitor
	list, err := e.store.GetNotificationsByMonitorID(ctx, m.ID)
	if err != nil {
		return fmt.Errorf("load notifications for %s: %w", m.ID, err)
	}

	for _, n := range list {
		switch n.Type {
		case domain.NotificationEmail:
			tmpl := TemplateServerDown
			if !upd.PrevStatus.Bool {
				tmpl = TemplateServerUp
			}
			subject := fmt.Sprintf("Monitor %s is %s", m.Name, upDown(upd.Probe.Status))
			data := StatusEmail{Monitor: m.Name, URL: m.URL}
			if err := e.email.SendEmail(ctx, tmpl, data, n.Address, subject); err != nil {
				e.log.Error("email_send_failed",
					zap.String("monitor_id", m.ID),
					zap.String("notification_id", n.ID),
					zap.String("template", tmpl),
					zap.Error(err))
			}
		case domain.NotificationWebhook:
			if _, err := e.SendWebhookNotification(ctx, n, upd); err != nil {
				e.log.Warn("webhook_notification_failed",
					zap.String("monitor_id", m.ID),
					zap.String("notification_id", n.ID),
					zap.String("platform", string(n.Platform)),
					zap.Error(err))
			}
		}
	}
	return nil
}

// StatusEmail is the data of the server_is_up and server_is_down templates.
type StatusEmail struct {
	Monitor string
	URL     string
}

func upDown(up bool) string {
	if up {
		return "up"
	}
	return "down"
}
