package handlers

import (
	"context"
	"time"

	"github.com/foodbridge/notifier/model"
	"github.com/foodbridge/notifier/push"
)

// Notifier implements the gating and dispatch sequence shared by every
// notification kind: resolve the recipient, apply the preference gate,
// dispatch the push, then record the audit entry.
type Notifier struct {
	store      NotificationStore
	dispatcher push.Dispatcher
}

// NewNotifier returns a new notifier.
func NewNotifier(store NotificationStore, dispatcher push.Dispatcher) *Notifier {
	return &Notifier{store: store, dispatcher: dispatcher}
}

// Notify sends the notification to the user identified by notification.UserID
// if the recipient exists, has a registered device, and hasn't disabled the
// category. The audit record is written only after the dispatch call returns
// successfully, so a recorded notification always corresponds to an attempted
// push.
func (n *Notifier) Notify(ctx context.Context, category model.Category, notification *model.Notification) error {

	// Resolve the recipient.
	user, err := n.store.GetUser(ctx, notification.UserID)
	if err != nil {
		return NewRecoverableError("unable to look up the notification recipient: %s", err.Error())
	}
	if user == nil {
		log.Debugf("user %s not found; dropping %s notification", notification.UserID, notification.NotificationType)
		return nil
	}
	if user.FCMToken == "" {
		log.Debugf("user %s has no registered device; dropping %s notification",
			notification.UserID, notification.NotificationType)
		return nil
	}

	// Apply the preference gate.
	if !user.NotificationsEnabled(category) {
		log.Debugf("user %s has disabled %s notifications", notification.UserID, category)
		return nil
	}

	// Dispatch the push notification.
	err = n.dispatcher.Send(ctx, &push.Push{
		Token: user.FCMToken,
		Title: notification.Title,
		Body:  notification.Body,
		Image: notification.Image,
		Data:  notification.Data,
	})
	if err != nil {
		return NewRecoverableError("unable to dispatch the push notification: %s", err.Error())
	}

	// Record the audit entry.
	notification.Read = false
	if notification.TimeCreated.IsZero() {
		notification.TimeCreated = time.Now()
	}
	err = n.store.SaveNotification(ctx, notification)
	if err != nil {
		return NewRecoverableError("unable to record the notification: %s", err.Error())
	}

	return nil
}
