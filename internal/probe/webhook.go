package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimecore/internal/domain"
)

// WebhookClient posts notification payloads to chat platforms.
type WebhookClient struct {
	Client *http.Client
	Logger *zap.Logger
}

func NewWebhookClient(timeout time.Duration, log *zap.Logger) *WebhookClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &WebhookClient{Client: &http.Client{Timeout: timeout}, Logger: log}
}

// RequestWebhook never returns an error; delivery failures are logged and
// reported through the result.
func (w *WebhookClient) RequestWebhook(ctx context.Context, platform domain.Platform, url string, message any) domain.WebhookResult {
	payload, err := json.Marshal(message)
	if err != nil {
		w.Logger.Error("webhook_marshal_failed", zap.String("platform", string(platform)), zap.Error(err))
		return domain.WebhookResult{Code: domain.NetworkError, Message: err.Error()}
	}

	fail := func(code int, body []byte, err error) domain.WebhookResult {
		w.Logger.Warn("webhook_send_failed",
			zap.String("url", url),
			zap.String("platform", string(platform)),
			zap.Int("status", code),
			zap.ByteString("response", body),
			zap.ByteString("payload", payload),
			zap.Error(err),
		)
		msg := statusMessage(code)
		if err != nil && code == domain.NetworkError {
			msg = err.Error()
		}
		return domain.WebhookResult{Code: code, Message: msg, Payload: body}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fail(domain.NetworkError, nil, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.Client.Do(req)
	if err != nil {
		return fail(domain.NetworkError, nil, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(resp.StatusCode, body, nil)
	}
	return domain.WebhookResult{
		Status:  true,
		Code:    resp.StatusCode,
		Message: "Successfully sent " + string(platform) + " notification",
		Payload: body,
	}
}
