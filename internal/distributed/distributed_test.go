package distributed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/guregu/null/v5"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimecore/internal/domain"
	"github.com/hamed0406/uptimecore/internal/repo/memory"
	"github.com/hamed0406/uptimecore/internal/status"
)

func TestDispatch_PostsJob(t *testing.T) {
	var (
		got pushRequest
		key string
	)
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key = r.Header.Get("x-checkmate-key")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"success":true}`))
	}))
	defer s.Close()

	d := NewDispatcher(s.URL, "secret", "https://uptime.example.com/", zap.NewNop())
	if err := d.Dispatch(context.Background(), &domain.Monitor{ID: "M", URL: "https://site.test"}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if key != "secret" {
		t.Fatalf("missing api key header, got %q", key)
	}
	want := pushRequest{ID: "M", URL: "https://site.test", Callback: "https://uptime.example.com/api/v1/distributed-uptime/callback"}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestDispatch_Rejections(t *testing.T) {
	tests := []struct {
		name string
		code int
		body string
	}{
		{"non-2xx", http.StatusUnauthorized, `{"message":"bad key"}`},
		{"success false", http.StatusOK, `{"success":false,"message":"quota"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.code)
				w.Write([]byte(tc.body))
			}))
			defer s.Close()
			err := NewDispatcher(s.URL, "k", "", nil).Dispatch(context.Background(), &domain.Monitor{ID: "M"})
			if !errors.Is(err, ErrRejected) {
				t.Fatalf("want ErrRejected, got %v", err)
			}
		})
	}
}

func TestResult_Normalization(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		status  bool
		code    int
		message string
		rt      int64
	}{
		{"ok", `{"status_code":200,"first_byte_took":425133400}`, true, 200, "OK", 425},
		{"http error", `{"status_code":503,"first_byte_took":1000000}`, false, 503, "Service Unavailable", 1},
		{"rounds up", `{"status_code":200,"first_byte_took":425633400}`, true, 200, "OK", 426},
		{"sub millisecond", `{"status_code":200,"first_byte_took":600000}`, true, 200, "OK", 1},
		{"network error", `{"status_code":0,"error":"dial tcp: i/o timeout"}`, false, domain.NetworkError, "Network Error", 0},
		{"error with code", `{"status_code":502,"error":"bad gateway"}`, false, 502, "Bad Gateway", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, err := Result("M", json.RawMessage(tc.raw))
			if err != nil {
				t.Fatalf("Result: %v", err)
			}
			if r.Status != tc.status || r.Code != tc.code || r.Message != tc.message || r.ResponseTime != tc.rt {
				t.Fatalf("got %+v", r)
			}
			if r.Type != domain.TypeDistributedHTTP || r.Timings == nil || string(r.Payload) != tc.raw {
				t.Fatalf("type, timings and payload must be set: %+v", r)
			}
		})
	}
	if _, err := Result("M", json.RawMessage(`[1,2`)); err == nil {
		t.Fatalf("malformed result should fail")
	}
}

type recordingNotifier struct{ updates []domain.StatusUpdate }

func (r *recordingNotifier) HandleNotifications(_ context.Context, upd domain.StatusUpdate) {
	r.updates = append(r.updates, upd)
}

func TestIngest_UpdatesStatusAndNotifies(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	if err := store.AddMonitor(ctx, &domain.Monitor{ID: "M", Name: "edge", Type: domain.TypeDistributedHTTP, Status: null.BoolFrom(true)}); err != nil {
		t.Fatalf("AddMonitor: %v", err)
	}
	engine := status.New(store, store, zap.NewNop())
	notifier := &recordingNotifier{}
	ing := NewIngestor(engine, notifier, zap.NewNop())

	raw := json.RawMessage(`{"status_code":500,"first_byte_took":2000000,"city":"Lahore","upt_burnt":"0.01"}`)
	upd, err := ing.Ingest(ctx, "M", raw)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if !upd.StatusChanged || !upd.PrevStatus.Bool {
		t.Fatalf("want up to down transition, got %+v", upd)
	}
	if len(notifier.updates) != 1 {
		t.Fatalf("notifier not invoked")
	}

	if err := engine.Drain(ctx); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	checks := store.Checks("M")
	if len(checks) != 1 || checks[0].Kind != memory.KindDistributed || checks[0].Check.Distributed.City != "Lahore" {
		t.Fatalf("distributed check not stored: %+v", checks)
	}

	if _, err := ing.Ingest(ctx, "unknown", raw); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown monitor should surface ErrNotFound, got %v", err)
	}
	if len(notifier.updates) != 1 {
		t.Fatalf("failed ingest must not notify")
	}
}
