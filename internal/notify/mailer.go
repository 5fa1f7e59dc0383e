package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"sync"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Mailer renders the embedded templates and delivers them over SMTP in the
// background. Delivery failures are only logged.
type Mailer struct {
	from      string
	templates *template.Template
	log       *zap.Logger
	timeout   time.Duration
	send      func(ctx context.Context, msg *mail.Msg) error

	pending sync.WaitGroup
}

func NewMailer(cfg SMTPConfig, log *zap.Logger) (*Mailer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	port := cfg.Port
	if port == 0 {
		port = 587
	}
	opts := []mail.Option{mail.WithPort(port), mail.WithTLSPolicy(mail.TLSOpportunistic)}
	if cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.User),
			mail.WithPassword(cfg.Password))
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	m, err := newMailer(cfg.From, log)
	if err != nil {
		return nil, err
	}
	m.send = func(ctx context.Context, msg *mail.Msg) error {
		return client.DialAndSendWithContext(ctx, msg)
	}
	return m, nil
}

func newMailer(from string, log *zap.Logger) (*Mailer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}
	return &Mailer{from: from, templates: tmpl, log: log, timeout: 30 * time.Second}, nil
}

// Render executes the named template (without extension).
func (m *Mailer) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := m.templates.ExecuteTemplate(&buf, name+".html", data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// SendEmail renders and queues one message. Only rendering and addressing
// errors are returned.
func (m *Mailer) SendEmail(ctx context.Context, tmpl string, data any, to, subject string) error {
	body, err := m.Render(tmpl, data)
	if err != nil {
		return err
	}
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("to address %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, body)

	m.pending.Add(1)
	go func() {
		defer m.pending.Done()
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
		defer cancel()
		if err := m.send(sctx, msg); err != nil {
			m.log.Error("email_delivery_failed",
				zap.String("to", to),
				zap.String("template", tmpl),
				zap.Error(err))
		}
	}()
	return nil
}

// Wait blocks until queued deliveries finish or ctx ends.
func (m *Mailer) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogOnlyEmail stands in for a Mailer when SMTP is not configured.
type LogOnlyEmail struct {
	Logger *zap.Logger
}

func (l LogOnlyEmail) SendEmail(_ context.Context, tmpl string, _ any, to, subject string) error {
	l.Logger.Warn("email_disabled",
		zap.String("to", to),
		zap.String("template", tmpl),
		zap.String("subject", subject))
	return nil
}
