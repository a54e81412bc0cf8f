package push

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// FCMDispatcher dispatches push notifications through Firebase Cloud Messaging.
type FCMDispatcher struct {
	client *messaging.Client
}

// NewFCMDispatcher creates a dispatcher backed by an FCM client. When no
// credentials file is given, application default credentials are used.
func NewFCMDispatcher(ctx context.Context, credentialsPath string) (*FCMDispatcher, error) {
	wrapMsg := "unable to initialize the FCM dispatcher"

	// Assemble the client options.
	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	// Create the Firebase app and its messaging client.
	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return &FCMDispatcher{client: client}, nil
}

// buildMessage converts a push into the FCM wire structure.
func buildMessage(push *Push) *messaging.Message {
	return &messaging.Message{
		Token: push.Token,
		Notification: &messaging.Notification{
			Title:    push.Title,
			Body:     push.Body,
			ImageURL: push.Image,
		},
		Data: push.Data,
	}
}

// Send dispatches a single push notification.
func (d *FCMDispatcher) Send(ctx context.Context, push *Push) error {
	_, err := d.client.Send(ctx, buildMessage(push))
	if err != nil {
		return errors.Wrap(err, "unable to dispatch the push notification")
	}
	return nil
}
