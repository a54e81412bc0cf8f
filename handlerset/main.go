package handlerset

import (
	"context"

	"github.com/cyverse-de/messaging/v9"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"github.com/foodbridge/notifier/common"
	"github.com/foodbridge/notifier/handlers"
)

var log = logrus.WithFields(logrus.Fields{"package": "handlerset"})

// HandlerSet represents a set of AMQP message handlers.
type HandlerSet struct {
	amqpSettings *common.AMQPSettings
	amqpClient   *messaging.Client
	handlerFor   map[string]handlers.MessageHandler
}

// New creates a new handler set.
func New(amqpSettings *common.AMQPSettings, handlerFor map[string]handlers.MessageHandler) (*HandlerSet, error) {
	wrapMsg := "unable to create the message handler set"

	// Create the AMQP client.
	amqpClient, err := messaging.NewClient(amqpSettings.URI, false)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Build and return the handler set.
	handlerSet := HandlerSet{
		amqpSettings: amqpSettings,
		amqpClient:   amqpClient,
		handlerFor:   handlerFor,
	}
	return &handlerSet, nil
}

// deliveryHandler adapts a message handler to the AMQP client's callback
// shape. Deliveries are always acknowledged: each event is handled at most
// once from the broker's point of view, and failures are only logged, so an
// event lost to a transient failure is not redelivered by the broker.
func (hs *HandlerSet) deliveryHandler(routingKey string, handler handlers.MessageHandler) messaging.MessageHandler {
	return func(ctx context.Context, delivery amqp.Delivery) {
		err := handler.HandleMessage(ctx, delivery)
		if err != nil {
			if handlers.IsRecoverable(err) {
				log.Errorf("transient failure while handling a %s event: %s", routingKey, err.Error())
			} else {
				log.Errorf("unable to handle a %s event: %s", routingKey, err.Error())
			}
		}
		if err := delivery.Ack(false); err != nil {
			log.Errorf("unable to acknowledge a %s event: %s", routingKey, err.Error())
		}
	}
}

// Listen registers one consumer per routing key and blocks, dispatching
// deliveries to the corresponding handlers.
func (hs *HandlerSet) Listen(queueName string) {
	for routingKey, handler := range hs.handlerFor {
		hs.amqpClient.AddConsumer(
			hs.amqpSettings.ExchangeName,
			hs.amqpSettings.ExchangeType,
			queueName,
			routingKey,
			hs.deliveryHandler(routingKey, handler),
			100,
		)
	}
	hs.amqpClient.Listen()
}

// Close closes a message handler set.
func (hs *HandlerSet) Close() {
	hs.amqpClient.Close()
}
