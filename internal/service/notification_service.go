package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/dedirosandiaj/problem-log-new/internal/config"
	"github.com/dedirosandiaj/problem-log-new/internal/domain"
	"github.com/dedirosandiaj/problem-log-new/internal/events"
	"github.com/dedirosandiaj/problem-log-new/internal/observability"
)

const (
	notificationKindAlert   = "complaint_alert"
	notificationKindForward = "mail_forward"
)

// OutgoingMail is one SMTP message.
type OutgoingMail struct {
	To       []string
	CC       []string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer delivers outgoing mail.
type Mailer interface {
	Send(ctx context.Context, msg OutgoingMail) error
}

// SMTPMailer sends through gomail.
type SMTPMailer struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

// NewSMTPMailer builds a mailer from SMTP settings.
func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer:   gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:     cfg.FromAddress,
		fromName: cfg.FromName,
	}
}

// Send dials the server and delivers one message.
func (m *SMTPMailer) Send(ctx context.Context, msg OutgoingMail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	message := gomail.NewMessage()
	message.SetAddressHeader("From", m.from, m.fromName)
	message.SetHeader("To", msg.To...)
	if len(msg.CC) > 0 {
		message.SetHeader("Cc", msg.CC...)
	}
	message.SetHeader("Subject", msg.Subject)
	message.SetBody("text/plain", msg.TextBody)
	if msg.HTMLBody != "" {
		message.AddAlternative("text/html", msg.HTMLBody)
	}
	return m.dialer.DialAndSend(message)
}

// NotificationService turns domain events into outbound email.
type NotificationService struct {
	mailer  Mailer
	logger  *zap.Logger
	metrics *observability.Metrics
	cfg     config.NotificationConfig
	wg      sync.WaitGroup
}

// NewNotificationService creates the service. A nil mailer disables delivery.
func NewNotificationService(mailer Mailer, logger *zap.Logger, metrics *observability.Metrics, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{mailer: mailer, logger: logger, metrics: metrics, cfg: cfg}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventComplaintCreated, n.handleComplaintCreated)
	dispatcher.Subscribe(events.EventMailSent, n.handleMailSent)
}

// Wait blocks until in-flight deliveries finish.
func (n *NotificationService) Wait() {
	n.wg.Wait()
}

func (n *NotificationService) handleComplaintCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ComplaintCreatedPayload)
	if !ok || payload.Severity != domain.SeverityHigh || len(n.cfg.AlertRecipients) == 0 {
		return nil
	}
	body := fmt.Sprintf(
		"Aduan prioritas tinggi %s\n\nNasabah: %s\nTerminal: %s\nJenis aduan: %s\nWaktu aduan: %s\nDibuat oleh: %s\n\n%s",
		payload.TicketNumber,
		payload.Customer,
		payload.TerminalID,
		payload.ComplaintType,
		payload.ReceivedAt.Format("2006-01-02 15:04"),
		event.Actor.Name,
		n.cfg.ConsoleURL,
	)
	n.deliver(ctx, notificationKindAlert, OutgoingMail{
		To:       n.cfg.AlertRecipients,
		Subject:  fmt.Sprintf("[HIGH] %s - %s", payload.TicketNumber, payload.TerminalID),
		TextBody: body,
	})
	return nil
}

func (n *NotificationService) handleMailSent(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.MailSentPayload)
	if !ok {
		return nil
	}
	to := partyAddresses(payload.To)
	if len(to) == 0 {
		return nil
	}
	n.deliver(ctx, notificationKindForward, OutgoingMail{
		To:       to,
		CC:       partyAddresses(payload.CC),
		Subject:  fmt.Sprintf("%s (dari %s)", payload.Subject, payload.SenderName),
		TextBody: payload.Content,
		HTMLBody: payload.ContentHTML,
	})
	return nil
}

// deliver sends in the background so SMTP latency never reaches the publisher.
func (n *NotificationService) deliver(ctx context.Context, kind string, msg OutgoingMail) {
	if n.mailer == nil {
		n.logger.Debug("notification skipped, smtp disabled", zap.String("kind", kind))
		return
	}
	ctx = context.WithoutCancel(ctx)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		err := n.mailer.Send(ctx, msg)
		n.metrics.NotificationSent(kind, err)
		if err != nil {
			n.logger.Warn("notification delivery failed",
				zap.String("kind", kind),
				zap.Strings("to", msg.To),
				zap.Error(err))
			return
		}
		n.logger.Debug("notification delivered", zap.String("kind", kind), zap.Strings("to", msg.To))
	}()
}

func partyAddresses(parties []domain.MailParty) []string {
	out := make([]string, 0, len(parties))
	for _, p := range parties {
		if email := strings.TrimSpace(p.Email); email != "" {
			out = append(out, email)
		}
	}
	return out
}
