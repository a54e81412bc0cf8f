package handlers

import (
	"context"
	"fmt"

	"github.com/streadway/amqp"

	"github.com/foodbridge/notifier/common"
	"github.com/foodbridge/notifier/model"
)

// MessageCreated is a message handler for chat message creation events.
type MessageCreated struct {
	notifier *Notifier
}

// NewMessageCreated returns a new chat message event handler.
func NewMessageCreated(notifier *Notifier) *MessageCreated {
	return &MessageCreated{notifier: notifier}
}

// HandleMessage handles a single chat message creation event. Malformed events
// are dropped without surfacing an error; a redelivery can't fix them.
func (h *MessageCreated) HandleMessage(ctx context.Context, delivery amqp.Delivery) error {

	// Deserialize and validate the event.
	event, err := decodeMessageCreatedEvent(delivery.Body)
	if err != nil {
		log.Infof("ignoring chat message event: %s", err.Error())
		return nil
	}
	timestamp, err := common.FixTimestamp(event.Timestamp)
	if err != nil {
		log.Infof("ignoring chat message event: %s", err.Error())
		return nil
	}

	// Build the notification.
	data := map[string]string{
		"chatId":      event.ChatID,
		"messageId":   event.MessageID,
		"donationId":  event.DonationID,
		"donorName":   event.DonorName,
		"productName": event.ProductName,
	}
	if timestamp != "" {
		data["timestamp"] = timestamp
	}
	notification := &model.Notification{
		UserID:           event.ReceiverID,
		NotificationType: model.TypeMessage,
		Title:            "New Message",
		Body:             fmt.Sprintf("%s: %s", event.SenderEmail, event.Body),
		Data:             data,
	}

	return h.notifier.Notify(ctx, model.CategoryMessages, notification)
}
