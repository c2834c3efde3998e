package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/staffdesk/staffdesk/internal/events"
)

// recordEvents change stored history and therefore invalidate trends.
var recordEvents = []events.EventType{
	events.EventTicketRecorded,
	events.EventInteractionRecorded,
	events.EventStaffChanged,
	events.EventImportCompleted,
}

// TrendInvalidator drops cached aggregates.
type TrendInvalidator interface {
	InvalidateTrends(ctx context.Context, event events.Event) error
}

// StartActivityWorker registers the activity handlers. Every record event is
// written to the activity log and clears cached trends.
func StartActivityWorker(dispatcher events.Dispatcher, trends TrendInvalidator, logger *zap.Logger) {
	if dispatcher == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	activity := logger.Named("activity")

	for _, eventType := range recordEvents {
		dispatcher.Subscribe(eventType, func(_ context.Context, event events.Event) error {
			activity.Info(string(event.Type),
				zap.String("event_id", event.ID),
				zap.String("subject", event.Subject),
				zap.Time("at", event.Timestamp),
			)
			return nil
		})
		if trends != nil {
			dispatcher.Subscribe(eventType, trends.InvalidateTrends)
		}
	}
}
