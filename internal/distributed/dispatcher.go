// Package distributed fires probes on the UpRock network and ingests the
// results it posts back.
package distributed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimecore/internal/domain"
)

const (
	DefaultEndpoint = "https://api.uprock.com/checkmate/push"
	CallbackPath    = "/api/v1/distributed-uptime/callback"
)

var ErrRejected = errors.New("probe network rejected the job")

// Dispatcher asks the probe network to check a monitor; the result comes
// back later through the callback endpoint.
type Dispatcher struct {
	Endpoint    string
	APIKey      string
	CallbackURL string // public base URL of this service
	Client      *http.Client
	Logger      *zap.Logger
}

func NewDispatcher(endpoint, apiKey, callbackURL string, log *zap.Logger) *Dispatcher {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		Endpoint:    endpoint,
		APIKey:      apiKey,
		CallbackURL: strings.TrimSuffix(callbackURL, "/"),
		Client:      &http.Client{Timeout: 10 * time.Second},
		Logger:      log,
	}
}

type pushRequest struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Callback string `json:"callback"`
}

type pushResponse struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

func (d *Dispatcher) Dispatch(ctx context.Context, m *domain.Monitor) error {
	body, err := json.Marshal(pushRequest{ID: m.ID, URL: m.URL, Callback: d.CallbackURL + CallbackPath})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-checkmate-key", d.APIKey)

	resp, err := d.Client.Do(req)
	if err != nil {
		return fmt.Errorf("dispatch %s: %w", m.ID, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("dispatch %s: status %d: %w", m.ID, resp.StatusCode, ErrRejected)
	}
	var pr pushResponse
	if len(raw) > 0 && json.Unmarshal(raw, &pr) == nil && pr.Success != nil && !*pr.Success {
		return fmt.Errorf("dispatch %s: %s: %w", m.ID, pr.Message, ErrRejected)
	}
	d.Logger.Debug("distributed_job_dispatched", zap.String("monitor_id", m.ID))
	return nil
}
