package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/guregu/null/v5"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimecore/internal/domain"
	"github.com/hamed0406/uptimecore/internal/probe"
	"github.com/hamed0406/uptimecore/internal/repo/memory"
)

func TestTelegram_EndToEnd(t *testing.T) {
	var (
		path string
		got  map[string]string
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	store := memory.New()
	_ = store.AddNotification(context.Background(), &domain.Notification{
		ID: "tg", MonitorID: "M", Type: domain.NotificationWebhook, Platform: domain.PlatformTelegram,
		Config: domain.WebhookConfig{BotToken: "42:xyz", ChatID: "-100200"},
	})
	e := New(store, &fakeEmail{}, probe.NewWebhookClient(time.Second, zap.NewNop()), zap.NewNop(), WithTelegramAPIBase(ts.URL))

	e.HandleNotifications(context.Background(), domain.StatusUpdate{
		Monitor:       &domain.Monitor{ID: "M", Name: "shop", Type: domain.TypeHTTP, URL: "https://shop.test"},
		Probe:         domain.ProbeResult{MonitorID: "M", Status: true},
		StatusChanged: true,
		PrevStatus:    null.BoolFrom(false),
	})

	if path != "/bot42:xyz/sendMessage" {
		t.Fatalf("unexpected telegram path %q", path)
	}
	if got["chat_id"] != "-100200" || got["text"] != "shop is up (https://shop.test)" {
		t.Fatalf("unexpected telegram payload %v", got)
	}
}

func TestStatusMessage(t *testing.T) {
	if got := StatusMessage("api", "https://api.test", false); got != "api is down (https://api.test)" {
		t.Fatalf("got %q", got)
	}
}
