package push

import "context"

// Push represents a single push notification addressed to one device.
type Push struct {
	Token string
	Title string
	Body  string
	Image string
	Data  map[string]string
}

// Dispatcher describes the interface used to dispatch push notifications.
type Dispatcher interface {
	Send(ctx context.Context, push *Push) error
}
