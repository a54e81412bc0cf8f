package handlers

import (
	"context"
	"fmt"

	"github.com/streadway/amqp"

	"github.com/foodbridge/notifier/model"
)

// RequestCreated is a message handler for donation request creation events.
// The recipient is the donor whose food item was requested.
type RequestCreated struct {
	notifier *Notifier
}

// NewRequestCreated returns a new request creation event handler.
func NewRequestCreated(notifier *Notifier) *RequestCreated {
	return &RequestCreated{notifier: notifier}
}

// HandleMessage handles a single donation request creation event.
func (h *RequestCreated) HandleMessage(ctx context.Context, delivery amqp.Delivery) error {

	// Deserialize and validate the event.
	event, err := decodeRequestCreatedEvent(delivery.Body)
	if err != nil {
		log.Infof("ignoring request creation event: %s", err.Error())
		return nil
	}

	// Build the notification.
	notification := &model.Notification{
		UserID:           event.DonorID,
		NotificationType: model.TypeRequest,
		Title:            "New Donation Request",
		Body:             fmt.Sprintf("%s wants your %s.", event.RequesterName, event.ProductName),
		Image:            event.ProductImage,
		Data: map[string]string{
			"requestId":   event.RequestID,
			"requesterId": event.RequesterID,
			"productName": event.ProductName,
		},
	}

	return h.notifier.Notify(ctx, model.CategoryRequests, notification)
}

// RequestUpdated is a message handler for donation request update events. It
// notifies the requester when a request transitions into the Accepted or
// Declined status; any other write is a no-op.
type RequestUpdated struct {
	notifier *Notifier
}

// NewRequestUpdated returns a new request update event handler.
func NewRequestUpdated(notifier *Notifier) *RequestUpdated {
	return &RequestUpdated{notifier: notifier}
}

// HandleMessage handles a single donation request update event.
func (h *RequestUpdated) HandleMessage(ctx context.Context, delivery amqp.Delivery) error {

	// Deserialize and validate the event.
	event, err := decodeRequestUpdatedEvent(delivery.Body)
	if err != nil {
		log.Infof("ignoring request update event: %s", err.Error())
		return nil
	}

	switch {
	case event.TransitionedTo(model.StatusAccepted):
		if event.After.PickupTime == "" {
			log.Infof("ignoring acceptance of request %s: no pickup time recorded", event.RequestID)
			return nil
		}
		notification := &model.Notification{
			UserID:           event.After.RequesterID,
			NotificationType: model.TypeRequestAccepted,
			Title:            "Donation Request Accepted",
			Body: fmt.Sprintf("%s, your request for %s has been accepted! Your pickup time is: %s",
				event.After.RequesterName, event.After.ProductName, event.After.PickupTime),
			Data: map[string]string{
				"requestId":   event.RequestID,
				"donorName":   event.After.DonorName,
				"productName": event.After.ProductName,
				"pickupTime":  event.After.PickupTime,
			},
		}
		return h.notifier.Notify(ctx, model.CategoryRequests, notification)

	case event.TransitionedTo(model.StatusDeclined):
		notification := &model.Notification{
			UserID:           event.After.RequesterID,
			NotificationType: model.TypeRequestDeclined,
			Title:            "Donation Request Declined",
			Body: fmt.Sprintf("%s, your request for %s has been declined.",
				event.After.RequesterName, event.After.ProductName),
			Data: map[string]string{
				"requestId":   event.RequestID,
				"donorName":   event.After.DonorName,
				"productName": event.After.ProductName,
			},
		}
		return h.notifier.Notify(ctx, model.CategoryRequests, notification)

	default:
		log.Debugf("request %s update crossed no notifiable transition", event.RequestID)
		return nil
	}
}
