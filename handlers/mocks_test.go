package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/streadway/amqp"

	"github.com/foodbridge/notifier/model"
	"github.com/foodbridge/notifier/push"
)

// MockDatabaseClient provides mock implementations of the database operations
// that handlers use.
type MockDatabaseClient struct {
	Users              map[string]*model.User
	SavedNotifications []*model.Notification
	RecomputedDonors   []string
	Summary            *model.RatingSummary
	GetUserErr         error
	SaveErr            error
	RecomputeErr       error
}

// NewMockDatabaseClient creates a new mock database client for testing.
func NewMockDatabaseClient(users ...*model.User) *MockDatabaseClient {
	userFor := make(map[string]*model.User)
	for _, user := range users {
		userFor[user.ID] = user
	}
	return &MockDatabaseClient{Users: userFor}
}

// GetUser returns the canned user for the ID, or nil when there isn't one.
func (c *MockDatabaseClient) GetUser(_ context.Context, userID string) (*model.User, error) {
	if c.GetUserErr != nil {
		return nil, c.GetUserErr
	}
	return c.Users[userID], nil
}

// SaveNotification records a copy of the notification that was saved.
func (c *MockDatabaseClient) SaveNotification(_ context.Context, notification *model.Notification) error {
	if c.SaveErr != nil {
		return c.SaveErr
	}
	c.SavedNotifications = append(c.SavedNotifications, notification)
	return nil
}

// RecomputeDonorRating records the donor ID and returns the canned summary.
func (c *MockDatabaseClient) RecomputeDonorRating(_ context.Context, donorID string) (*model.RatingSummary, error) {
	if c.RecomputeErr != nil {
		return nil, c.RecomputeErr
	}
	c.RecomputedDonors = append(c.RecomputedDonors, donorID)
	return c.Summary, nil
}

// MockDispatcher records every push it is asked to send.
type MockDispatcher struct {
	Sent []*push.Push
	Err  error
}

// Send stores a copy of the push for later inspection.
func (d *MockDispatcher) Send(_ context.Context, p *push.Push) error {
	if d.Err != nil {
		return d.Err
	}
	d.Sent = append(d.Sent, p)
	return nil
}

// testUser returns a user with a registered device and no stored preferences.
func testUser(id, token string) *model.User {
	return &model.User{ID: id, Email: id + "@example.org", FCMToken: token}
}

// delivery wraps an envelope in an AMQP delivery the way the event source
// publishes it.
func delivery(t *testing.T, routingKey string, envelope map[string]interface{}) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("unable to marshal the test envelope: %s", err)
	}
	return amqp.Delivery{RoutingKey: routingKey, Body: body}
}
