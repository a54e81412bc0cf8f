package handlers

import (
	"context"

	"github.com/streadway/amqp"
)

// ReviewWritten is a message handler for review writes. Every write triggers a
// full recompute of the donor's aggregate rating; no push is sent.
type ReviewWritten struct {
	db DatabaseClient
}

// NewReviewWritten returns a new review event handler.
func NewReviewWritten(db DatabaseClient) *ReviewWritten {
	return &ReviewWritten{db: db}
}

// HandleMessage handles a single review write event.
func (h *ReviewWritten) HandleMessage(ctx context.Context, delivery amqp.Delivery) error {

	// Deserialize and validate the event.
	event, err := decodeReviewWrittenEvent(delivery.Body)
	if err != nil {
		log.Infof("ignoring review event: %s", err.Error())
		return nil
	}

	// Recompute the donor's rating.
	summary, err := h.db.RecomputeDonorRating(ctx, event.DonorID)
	if err != nil {
		return NewRecoverableError("unable to recompute the donor rating: %s", err.Error())
	}
	if summary == nil {
		log.Infof("donor %s not found; skipping rating recompute", event.DonorID)
		return nil
	}

	log.Infof("recorded rating %.1f across %d reviews for donor %s",
		summary.AverageRating, summary.ReviewCount, event.DonorID)
	return nil
}
