package services

import (
	"context"
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"casasmart/internal/metrics"
)

// Notifier delivers operations alerts (new booking, customer decision).
// Delivery problems are logged; callers never fail because of them.
type Notifier interface {
	NotifyOps(ctx context.Context, subject, body string)
}

type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailNotifier struct {
	dialer mailDialer
	from   string
	to     []string
	log    *zap.Logger
}

func NewEmailNotifier(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string, opsEmails []string, log *zap.Logger) Notifier {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailNotifier{
		dialer: dialer,
		from:   fromEmail,
		to:     opsEmails,
		log:    log,
	}
}

func (s *emailNotifier) NotifyOps(_ context.Context, subject, body string) {
	if len(s.to) == 0 {
		return
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", s.to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", fmt.Sprintf(`
		<h3>%s</h3>
		<p>%s</p>
		<p>Casa Smart back-office</p>
	`, html.EscapeString(subject), strings.ReplaceAll(html.EscapeString(body), "\n", "<br>")))

	if err := s.dialer.DialAndSend(m); err != nil {
		// письмо не критично: warn, но не валим операцию
		s.log.Warn("ops email failed", zap.String("subject", subject), zap.Error(err))
		metrics.IncrementNotification("email", "failed")
		return
	}
	metrics.IncrementNotification("email", "sent")
}

// MultiNotifier fans one alert out to every configured channel.
type MultiNotifier []Notifier

func (m MultiNotifier) NotifyOps(ctx context.Context, subject, body string) {
	for _, n := range m {
		if n != nil {
			n.NotifyOps(ctx, subject, body)
		}
	}
}

type nopNotifier struct{}

func (nopNotifier) NotifyOps(context.Context, string, string) {}

func NopNotifier() Notifier { return nopNotifier{} }
