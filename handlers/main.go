package handlers

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"github.com/foodbridge/notifier/model"
	"github.com/foodbridge/notifier/push"
)

var log = logrus.WithFields(logrus.Fields{"package": "handlers"})

// The routing keys of the change events that this service reacts to.
const (
	KeyMessageCreated = "events.chat.message.created"
	KeyRequestCreated = "events.donation.request.created"
	KeyRequestUpdated = "events.donation.request.updated"
	KeyReviewWritten  = "events.review.written"
)

// MessageHandler describes the interface used to handle AMQP messages.
type MessageHandler interface {
	HandleMessage(ctx context.Context, delivery amqp.Delivery) error
}

// NotificationStore describes the database operations needed to resolve a
// notification recipient and record an audit entry.
type NotificationStore interface {
	GetUser(ctx context.Context, userID string) (*model.User, error)
	SaveNotification(ctx context.Context, notification *model.Notification) error
}

// DatabaseClient describes the full set of database operations used by the
// message handlers.
type DatabaseClient interface {
	NotificationStore
	RecomputeDonorRating(ctx context.Context, donorID string) (*model.RatingSummary, error)
}

// InitMessageHandlers returns a map from routing key to message handler.
func InitMessageHandlers(dc DatabaseClient, dispatcher push.Dispatcher) map[string]MessageHandler {
	notifier := NewNotifier(dc, dispatcher)
	return map[string]MessageHandler{
		KeyMessageCreated: NewMessageCreated(notifier),
		KeyRequestCreated: NewRequestCreated(notifier),
		KeyRequestUpdated: NewRequestUpdated(notifier),
		KeyReviewWritten:  NewReviewWritten(dc),
	}
}
