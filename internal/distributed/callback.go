package distributed

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimecore/internal/domain"
)

// StatusUpdater applies a probe result to its monitor.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, r domain.ProbeResult) (domain.StatusUpdate, error)
}

// Notifier reacts to a status update.
type Notifier interface {
	HandleNotifications(ctx context.Context, upd domain.StatusUpdate)
}

// Ingestor turns a probe network callback into a regular probe cycle.
type Ingestor struct {
	status   StatusUpdater
	notifier Notifier // optional
	log      *zap.Logger
}

func NewIngestor(status StatusUpdater, notifier Notifier, log *zap.Logger) *Ingestor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ingestor{status: status, notifier: notifier, log: log}
}

const msgNetworkError = "Network Error"

// nanosToMillis rounds to the nearest millisecond.
func nanosToMillis(ns int64) int64 {
	return int64(math.Round(float64(ns) / 1e6))
}

// Result normalizes a raw probe network result into a ProbeResult.
func Result(monitorID string, raw json.RawMessage) (domain.ProbeResult, error) {
	var res domain.DistributedResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return domain.ProbeResult{}, fmt.Errorf("decode callback result: %w", err)
	}
	timings := res.Timings

	r := domain.ProbeResult{
		MonitorID:    monitorID,
		Type:         domain.TypeDistributedHTTP,
		Status:       !(res.StatusCode >= 400 || res.Error != ""),
		Code:         res.StatusCode,
		ResponseTime: nanosToMillis(res.FirstByte),
		Timings:      &timings,
		Payload:      append([]byte(nil), raw...),
	}
	if res.Error != "" && r.Code == 0 {
		r.Code = domain.NetworkError
	}
	if t := http.StatusText(r.Code); t != "" {
		r.Message = t
	}
	if res.Error != "" && r.Message == "" {
		r.Message = msgNetworkError
	}
	return r, nil
}

// Ingest records the callback result for monitor id and, when configured,
// dispatches alerts.
func (i *Ingestor) Ingest(ctx context.Context, id string, raw json.RawMessage) (domain.StatusUpdate, error) {
	r, err := Result(id, raw)
	if err != nil {
		i.log.Warn("callback_decode_failed", zap.String("monitor_id", id), zap.Error(err))
		return domain.StatusUpdate{}, err
	}

	upd, err := i.status.UpdateStatus(ctx, r)
	if err != nil {
		return domain.StatusUpdate{}, err
	}
	if i.notifier != nil {
		i.notifier.HandleNotifications(ctx, upd)
	}
	return upd, nil
}
