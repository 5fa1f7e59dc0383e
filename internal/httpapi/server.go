package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimecore/internal/domain"
	apimw "github.com/hamed0406/uptimecore/internal/httpapi/middleware"
)

// CallbackIngestor consumes probe network results.
type CallbackIngestor interface {
	Ingest(ctx context.Context, id string, raw json.RawMessage) (domain.StatusUpdate, error)
}

// TestNotifier sends a synthetic alert through one notification channel.
type TestNotifier interface {
	SendTestNotification(ctx context.Context, n *domain.Notification) (domain.WebhookResult, error)
}

// MonitorReader lists monitors and their current status.
type MonitorReader interface {
	GetMonitorByID(ctx context.Context, id string) (*domain.Monitor, error)
	ListMonitors(ctx context.Context) ([]*domain.Monitor, error)
}

type Server struct {
	Logger         *zap.Logger
	Ingestor       CallbackIngestor
	Notifier       TestNotifier
	Monitors       MonitorReader // optional; enables the status routes
	Keys           apimw.Keys
	CallbackRPM    int
	CallbackBurst  int
	TrustedProxies []string
}

func NewServer(l *zap.Logger, ing CallbackIngestor, n TestNotifier, keys apimw.Keys) *Server {
	return &Server{Logger: l, Ingestor: ing, Notifier: n, Keys: keys, CallbackRPM: 120, CallbackBurst: 20}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.Recoverer)
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.With(apimw.RateLimit(s.CallbackRPM, s.CallbackBurst, s.TrustedProxies...)).
			Post("/distributed-uptime/callback", s.handleCallback)
		r.With(apimw.RequireAdmin(s.Keys)).
			Post("/notifications/trigger", s.handleTriggerNotification)
		if s.Monitors != nil {
			r.Group(func(r chi.Router) {
				r.Use(apimw.RequireRead(s.Keys))
				r.Get("/monitors", s.handleListMonitors)
				r.Get("/monitors/{id}", s.handleGetMonitor)
			})
		}
	})
	return r
}

type callbackPayload struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result"`
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	var p callbackPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&p); err != nil || p.ID == "" || len(p.Result) == 0 {
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}

	upd, err := s.Ingestor.Ingest(r.Context(), p.ID, p.Result)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "monitor not found")
		return
	case err != nil:
		s.Logger.Warn("callback_failed", zap.String("monitor_id", p.ID), zap.Error(err))
		writeError(w, http.StatusBadRequest, "could not process result")
		return
	}

	s.Logger.Debug("callback_ingested",
		zap.String("monitor_id", p.ID),
		zap.Bool("up", upd.Probe.Status),
		zap.Bool("status_changed", upd.StatusChanged),
	)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "msg": "OK"})
}

type monitorView struct {
	ID     string             `json:"id"`
	Name   string             `json:"name"`
	Type   domain.MonitorType `json:"type"`
	URL    string             `json:"url"`
	Status string             `json:"status"`
}

func viewOf(m *domain.Monitor) monitorView {
	return monitorView{ID: m.ID, Name: m.Name, Type: m.Type, URL: m.URL, Status: domain.StatusString(m.Status)}
}

func (s *Server) handleListMonitors(w http.ResponseWriter, r *http.Request) {
	list, err := s.Monitors.ListMonitors(r.Context())
	if err != nil {
		s.Logger.Error("list_monitors_failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list monitors")
		return
	}
	out := make([]monitorView, 0, len(list))
	for _, m := range list {
		out = append(out, viewOf(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetMonitor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, err := s.Monitors.GetMonitorByID(r.Context(), id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "monitor not found")
		return
	case err != nil:
		s.Logger.Error("get_monitor_failed", zap.String("monitor_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load monitor")
		return
	}
	writeJSON(w, http.StatusOK, viewOf(m))
}

type triggerPayload struct {
	Type     domain.NotificationType `json:"type"`
	Address  string                  `json:"address"`
	Platform domain.Platform         `json:"platform"`
	Config   domain.WebhookConfig    `json:"config"`
}

func (s *Server) handleTriggerNotification(w http.ResponseWriter, r *http.Request) {
	var p triggerPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}
	if p.Type == "" {
		p.Type = domain.NotificationWebhook
	}
	if p.Type != domain.NotificationWebhook && p.Type != domain.NotificationEmail {
		writeError(w, http.StatusBadRequest, "unsupported notification type")
		return
	}

	n := &domain.Notification{Type: p.Type, Address: p.Address, Platform: p.Platform, Config: p.Config}
	res, err := s.Notifier.SendTestNotification(r.Context(), n)
	if err != nil {
		code := http.StatusBadGateway
		if errors.Is(err, domain.ErrUnsupportedPlatform) || errors.Is(err, domain.ErrMissingPlatformConfig) {
			code = http.StatusBadRequest
		}
		s.Logger.Info("test_notification_failed", zap.String("platform", string(p.Platform)), zap.Error(err))
		writeJSON(w, code, map[string]any{"success": false, "msg": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "msg": res.Message})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
