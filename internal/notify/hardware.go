package notify

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimecore/internal/domain"
)

// HardwareEmail is the data of the hardware_incident template.
type HardwareEmail struct {
	Monitor string
	Alerts  []string
}

// HandleHardwareNotifications applies the per-notification hysteresis
// counters: each breaching metric decrements its counter and an alert line
// is produced only when the counter reaches zero, after which it is reset.
func (e *Engine) HandleHardwareNotifications(ctx context.Context, upd domain.StatusUpdate) error {
	m := upd.Monitor
	if m.Thresholds == nil || !upd.Probe.Status {
		return nil
	}
	payload, ok := domain.DecodeHardware(upd.Probe.Payload)
	if !ok {
		return nil
	}
	breaches := evaluate(m.Thresholds, payload.Data)
	if len(breaches) == 0 {
		return nil
	}

	unlock := e.monitorLocks.Lock(m.ID)
	defer unlock()

	list, err := e.store.GetNotificationsByMonitorID(ctx, m.ID)
	if err != nil {
		return fmt.Errorf("load notifications for %s: %w", m.ID, err)
	}

	for _, n := range list {
		var alerts []string
		for _, metric := range domain.Metrics {
			line, breached := breaches[metric]
			if !breached {
				continue
			}
			counter := n.Counter(metric)
			*counter--
			if *counter <= 0 {
				*counter = n.AlertThreshold
				alerts = append(alerts, line)
			}
		}

		if err := e.store.SaveNotification(ctx, n); err != nil {
			e.log.Error("save_notification_failed",
				zap.String("monitor_id", m.ID),
				zap.String("notification_id", n.ID),
				zap.Error(err))
		}
		if len(alerts) == 0 || n.Type != domain.NotificationEmail {
			continue
		}

		subject := fmt.Sprintf("Monitor %s infrastructure alerts", m.Name)
		data := HardwareEmail{Monitor: m.Name, Alerts: alerts}
		if err := e.email.SendEmail(ctx, TemplateHardwareIncident, data, n.Address, subject); err != nil {
			e.log.Error("email_send_failed",
				zap.String("monitor_id", m.ID),
				zap.String("notification_id", n.ID),
				zap.String("template", TemplateHardwareIncident),
				zap.Error(err))
		}
	}
	return nil
}

// evaluate returns the formatted alert line of every metric whose usage
// exceeds an enabled threshold.
func evaluate(th *domain.Thresholds, data *domain.HardwareData) map[domain.Metric]string {
	out := make(map[domain.Metric]string, 3)

	if limit := th.CPU(); limit != -1 && data.CPU != nil {
		if usage := value(data.CPU.UsagePercent); usage > limit {
			out[domain.MetricCPU] = fmt.Sprintf("Your current CPU usage (%s) is above your threshold (%s)", pct(usage), pct(limit))
		}
	}
	if limit := th.Memory(); limit != -1 && data.Memory != nil {
		if usage := value(data.Memory.UsagePercent); usage > limit {
			out[domain.MetricMemory] = fmt.Sprintf("Your current memory usage (%s) is above your threshold (%s)", pct(usage), pct(limit))
		}
	}
	if limit := th.Disk(); limit != -1 {
		breached := false
		parts := make([]string, 0, len(data.Disk))
		for i, d := range data.Disk {
			usage := value(d.UsagePercent)
			if usage > limit {
				breached = true
			}
			parts = append(parts, fmt.Sprintf("(Disk%d: %s)", i, pct(usage)))
		}
		if breached {
			out[domain.MetricDisk] = fmt.Sprintf("Your current disk usage: %s is above your threshold (%s)", strings.Join(parts, ", "), pct(limit))
		}
	}
	return out
}

func value(p *float64) float64 {
	if p == nil {
		return -1
	}
	return *p
}

func pct(fraction float64) string {
	if fraction < 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d%%", int(math.Round(fraction*100)))
}
