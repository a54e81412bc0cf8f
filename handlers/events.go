package handlers

import (
	"encoding/json"

	"github.com/foodbridge/notifier/common"
	"github.com/foodbridge/notifier/model"
)

// envelope is the change event wire format: path parameters plus the document
// snapshots before and after the write. Creates carry only `after`; deletes
// carry only `before`.
type envelope struct {
	Parameters map[string]string `json:"parameters"`
	Before     json.RawMessage   `json:"before"`
	After      json.RawMessage   `json:"after"`
}

func decodeEnvelope(body []byte) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, NewUnrecoverableError("unable to parse message body: %s", err.Error())
	}
	return &env, nil
}

// MessageCreatedEvent represents a validated chat message creation event.
type MessageCreatedEvent struct {
	ChatID      string
	MessageID   string
	ReceiverID  string `json:"receiverId"`
	SenderEmail string `json:"senderEmail"`
	Body        string `json:"message"`
	DonationID  string `json:"donationId"`
	DonorName   string `json:"donorName"`
	ProductName string `json:"productName"`
	Timestamp   string `json:"timestamp"`
}

// decodeMessageCreatedEvent deserializes and validates a chat message creation
// event. Field validation happens here, once, so the handler never has to
// re-check anything before acting.
func decodeMessageCreatedEvent(body []byte) (*MessageCreatedEvent, error) {
	env, err := decodeEnvelope(body)
	if err != nil {
		return nil, err
	}
	if len(env.After) == 0 {
		return nil, NewUnrecoverableError("chat message event carries no document snapshot")
	}

	var event MessageCreatedEvent
	if err := json.Unmarshal(env.After, &event); err != nil {
		return nil, NewUnrecoverableError("unable to parse the chat message snapshot: %s", err.Error())
	}
	event.ChatID = env.Parameters["chatId"]
	event.MessageID = env.Parameters["messageId"]

	if event.ChatID == "" || event.ReceiverID == "" || event.Body == "" || event.SenderEmail == "" ||
		event.DonationID == "" || event.DonorName == "" || event.ProductName == "" {
		return nil, NewUnrecoverableError("chat message event is missing required fields")
	}

	// An unusual sender string is worth flagging, but the message itself is
	// still deliverable.
	if err := common.ValidateEmailAddress(event.SenderEmail); err != nil {
		log.Warnf("chat message in chat %s carries an unusual sender address: %s", event.ChatID, err.Error())
	}

	return &event, nil
}

// RequestSnapshot is the donation request document shape shared by the request
// creation and request update events.
type RequestSnapshot struct {
	DonorID       string `json:"donorId"`
	RequesterID   string `json:"requesterId"`
	RequesterName string `json:"requesterName"`
	DonorName     string `json:"donorName"`
	ProductName   string `json:"productName"`
	ProductImage  string `json:"productImage"`
	PickupTime    string `json:"pickupTime"`
	Status        string `json:"status"`
}

// RequestCreatedEvent represents a validated donation request creation event.
type RequestCreatedEvent struct {
	RequestID string
	RequestSnapshot
}

func decodeRequestCreatedEvent(body []byte) (*RequestCreatedEvent, error) {
	env, err := decodeEnvelope(body)
	if err != nil {
		return nil, err
	}
	if len(env.After) == 0 {
		return nil, NewUnrecoverableError("request creation event carries no document snapshot")
	}

	var event RequestCreatedEvent
	if err := json.Unmarshal(env.After, &event.RequestSnapshot); err != nil {
		return nil, NewUnrecoverableError("unable to parse the request snapshot: %s", err.Error())
	}
	event.RequestID = env.Parameters["requestId"]

	if event.RequestID == "" || event.DonorID == "" || event.RequesterName == "" || event.ProductName == "" {
		return nil, NewUnrecoverableError("request creation event is missing required fields")
	}

	return &event, nil
}

// RequestUpdatedEvent represents a validated donation request update event.
// Before may be nil when the event source didn't capture the prior state.
type RequestUpdatedEvent struct {
	RequestID string
	Before    *RequestSnapshot
	After     RequestSnapshot
}

func decodeRequestUpdatedEvent(body []byte) (*RequestUpdatedEvent, error) {
	env, err := decodeEnvelope(body)
	if err != nil {
		return nil, err
	}
	if len(env.After) == 0 {
		return nil, NewUnrecoverableError("request update event carries no document snapshot")
	}

	var event RequestUpdatedEvent
	if err := json.Unmarshal(env.After, &event.After); err != nil {
		return nil, NewUnrecoverableError("unable to parse the request snapshot: %s", err.Error())
	}
	if len(env.Before) != 0 {
		var before RequestSnapshot
		if err := json.Unmarshal(env.Before, &before); err != nil {
			return nil, NewUnrecoverableError("unable to parse the prior request snapshot: %s", err.Error())
		}
		event.Before = &before
	}
	event.RequestID = env.Parameters["requestId"]

	if event.RequestID == "" || event.After.RequesterID == "" ||
		event.After.RequesterName == "" || event.After.ProductName == "" {
		return nil, NewUnrecoverableError("request update event is missing required fields")
	}

	return &event, nil
}

// TransitionedTo reports whether this write moved the request into the given
// status. A write that leaves the status unchanged is not a transition.
func (e *RequestUpdatedEvent) TransitionedTo(status model.RequestStatus) bool {
	if model.RequestStatus(e.After.Status) != status {
		return false
	}
	return e.Before == nil || model.RequestStatus(e.Before.Status) != status
}

// ReviewWrittenEvent represents a validated review write. Creates and updates
// carry the donor in the new snapshot; deletes carry it in the old one.
type ReviewWrittenEvent struct {
	DonorID string `json:"donorId"`
}

func decodeReviewWrittenEvent(body []byte) (*ReviewWrittenEvent, error) {
	env, err := decodeEnvelope(body)
	if err != nil {
		return nil, err
	}
	snapshot := env.After
	if len(snapshot) == 0 {
		snapshot = env.Before
	}
	if len(snapshot) == 0 {
		return nil, NewUnrecoverableError("review event carries no document snapshot")
	}

	var event ReviewWrittenEvent
	if err := json.Unmarshal(snapshot, &event); err != nil {
		return nil, NewUnrecoverableError("unable to parse the review snapshot: %s", err.Error())
	}
	if event.DonorID == "" {
		return nil, NewUnrecoverableError("review event is missing the donor ID")
	}

	return &event, nil
}
