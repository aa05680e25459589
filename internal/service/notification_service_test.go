package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dedirosandiaj/problem-log-new/internal/config"
	"github.com/dedirosandiaj/problem-log-new/internal/domain"
	"github.com/dedirosandiaj/problem-log-new/internal/events"
	"github.com/dedirosandiaj/problem-log-new/internal/observability"
)

func complaintCreated(severity domain.Severity) events.Event {
	return events.New(events.EventComplaintCreated, "c-1", admin, events.ComplaintCreatedPayload{
		TicketNumber:  "TKT-12345",
		Customer:      "Budi Santoso",
		TerminalID:    "TID-00123",
		ComplaintType: "ATM Offline",
		Severity:      severity,
		ReceivedAt:    time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC),
	})
}

func TestNotificationService_HighSeverityAlert(t *testing.T) {
	mailer := new(mockMailer)
	mailer.On("Send", mock.Anything, mock.MatchedBy(func(msg OutgoingMail) bool {
		return msg.Subject == "[HIGH] TKT-12345 - TID-00123" &&
			len(msg.To) == 1 && msg.To[0] == "ops@bank.co.id"
	})).Return(nil).Once()

	dispatcher := events.NewInMemoryDispatcher(nil)
	svc := NewNotificationService(mailer, nil, observability.NewMetrics(),
		config.NotificationConfig{AlertRecipients: []string{"ops@bank.co.id"}})
	svc.RegisterHandlers(dispatcher)

	ctx := context.Background()
	_ = dispatcher.Publish(ctx, complaintCreated(domain.SeverityMedium))
	_ = dispatcher.Publish(ctx, complaintCreated(domain.SeverityHigh))
	svc.Wait()

	mailer.AssertExpectations(t)
	mailer.AssertNumberOfCalls(t, "Send", 1)
}

func TestNotificationService_NoRecipientsNoAlert(t *testing.T) {
	mailer := new(mockMailer)
	dispatcher := events.NewInMemoryDispatcher(nil)
	svc := NewNotificationService(mailer, nil, nil, config.NotificationConfig{})
	svc.RegisterHandlers(dispatcher)

	_ = dispatcher.Publish(context.Background(), complaintCreated(domain.SeverityHigh))
	svc.Wait()
	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestNotificationService_ForwardsMail(t *testing.T) {
	mailer := new(mockMailer)
	mailer.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp unavailable")).Once()

	dispatcher := events.NewInMemoryDispatcher(nil)
	svc := NewNotificationService(mailer, nil, nil, config.NotificationConfig{})
	svc.RegisterHandlers(dispatcher)

	err := dispatcher.Publish(context.Background(), events.New(events.EventMailSent, "m-1", admin, events.MailSentPayload{
		MailID:      "m-1",
		Subject:     "Replenish",
		SenderName:  "Joko",
		To:          []domain.MailParty{{ID: "1", Name: "Admin", Email: "admin@problemlog.com"}},
		CC:          []domain.MailParty{{ID: "2", Name: "No Mail"}},
		Content:     "Mohon approval",
		ContentHTML: "<p>Mohon approval</p>",
	}))
	svc.Wait()

	assert.NoError(t, err)
	mailer.AssertExpectations(t)
	msg := mailer.Calls[0].Arguments.Get(1).(OutgoingMail)
	assert.Equal(t, []string{"admin@problemlog.com"}, msg.To)
	assert.Empty(t, msg.CC)
	assert.Equal(t, "Replenish (dari Joko)", msg.Subject)
	assert.Equal(t, "<p>Mohon approval</p>", msg.HTMLBody)
}

func TestNotificationService_NilMailerSkips(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher(nil)
	svc := NewNotificationService(nil, nil, nil, config.NotificationConfig{AlertRecipients: []string{"ops@bank.co.id"}})
	svc.RegisterHandlers(dispatcher)
	_ = dispatcher.Publish(context.Background(), complaintCreated(domain.SeverityHigh))
	svc.Wait()
}
