package worker

import (
	"context"

	"github.com/dedirosandiaj/problem-log-new/internal/events"
	"github.com/dedirosandiaj/problem-log-new/internal/service"
)

// LiveFeed pushes complaint events to connected consoles.
type LiveFeed interface {
	HandleEvent(ctx context.Context, event events.Event) error
}

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(dispatcher events.Dispatcher, notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers(dispatcher)
}

// StartLiveFeed subscribes the feed to every complaint event.
func StartLiveFeed(dispatcher events.Dispatcher, feed LiveFeed) {
	if dispatcher == nil || feed == nil {
		return
	}
	for _, eventType := range events.ComplaintEventTypes {
		dispatcher.Subscribe(eventType, feed.HandleEvent)
	}
}
