package notify

import (
	"context"
	"fmt"

	"github.com/guregu/null/v5"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimecore/internal/domain"
)

type telegramPayload struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type slackPayload struct {
	Text string `json:"text"`
}

type discordPayload struct {
	Content string `json:"content"`
}

// StatusMessage is the chat text for a monitor transition.
func StatusMessage(name, url string, up bool) string {
	return fmt.Sprintf("%s is %s (%s)", name, upDown(up), url)
}

// SendWebhookNotification formats the transition for n's platform and posts it.
func (e *Engine) SendWebhookNotification(ctx context.Context, n *domain.Notification, upd domain.StatusUpdate) (domain.WebhookResult, error) {
	var (
		url     string
		message any
	)
	text := StatusMessage(upd.Monitor.Name, upd.Monitor.URL, upd.Probe.Status)

	switch n.Platform {
	case domain.PlatformTelegram:
		if n.Config.BotToken == "" || n.Config.ChatID == "" {
			return domain.WebhookResult{}, fmt.Errorf("telegram notification %s: %w", n.ID, domain.ErrMissingPlatformConfig)
		}
		url = e.telegramBase + "/bot" + n.Config.BotToken + "/sendMessage"
		message = telegramPayload{ChatID: n.Config.ChatID, Text: text}
	case domain.PlatformSlack:
		url = n.Config.WebhookURL
		message = slackPayload{Text: text}
	case domain.PlatformDiscord:
		url = n.Config.WebhookURL
		message = discordPayload{Content: text}
	default:
		e.log.Warn("unsupported_webhook_platform",
			zap.String("notification_id", n.ID),
			zap.String("platform", string(n.Platform)))
		return domain.WebhookResult{}, fmt.Errorf("platform %q: %w", n.Platform, domain.ErrUnsupportedPlatform)
	}

	res := e.webhook.RequestWebhook(ctx, n.Platform, url, message)
	if !res.Status {
		return res, fmt.Errorf("%s webhook: %d %s", n.Platform, res.Code, res.Message)
	}
	return res, nil
}

// SendTestNotification delivers a synthetic "Test Monitor is down" alert
// through n so channel settings can be verified.
func (e *Engine) SendTestNotification(ctx context.Context, n *domain.Notification) (domain.WebhookResult, error) {
	upd := domain.StatusUpdate{
		Monitor:       &domain.Monitor{Name: "Test Monitor", URL: "http://www.google.com"},
		Probe:         domain.ProbeResult{Status: false},
		StatusChanged: true,
		PrevStatus:    null.BoolFrom(true),
	}

	if n.Type == domain.NotificationEmail {
		data := StatusEmail{Monitor: upd.Monitor.Name, URL: upd.Monitor.URL}
		if err := e.email.SendEmail(ctx, TemplateServerDown, data, n.Address, "Monitor Test Monitor is down"); err != nil {
			return domain.WebhookResult{}, err
		}
		return domain.WebhookResult{Status: true, Message: "Test email queued"}, nil
	}
	return e.SendWebhookNotification(ctx, n, upd)
}
