package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/foodbridge/notifier/model"
)

func chatEnvelope(after map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"parameters": map[string]string{"chatId": "c1", "messageId": "m1"},
		"after":      after,
	}
}

func chatSnapshot() map[string]interface{} {
	return map[string]interface{}{
		"receiverId":  "u1",
		"senderEmail": "donor@example.org",
		"message":     "Still available?",
		"donationId":  "d1",
		"donorName":   "Alex",
		"productName": "Milk",
		"timestamp":   "1594336370706",
	}
}

func TestMessageCreated(t *testing.T) {
	assert := assert.New(t)

	db := NewMockDatabaseClient(testUser("u1", "T1"))
	dispatcher := &MockDispatcher{}
	handler := NewMessageCreated(NewNotifier(db, dispatcher))

	err := handler.HandleMessage(context.Background(), delivery(t, KeyMessageCreated, chatEnvelope(chatSnapshot())))
	assert.NoError(err)

	// Verify the dispatched push.
	if assert.Len(dispatcher.Sent, 1) {
		sent := dispatcher.Sent[0]
		assert.Equal("T1", sent.Token)
		assert.Equal("New Message", sent.Title)
		assert.Equal("donor@example.org: Still available?", sent.Body)
		assert.Equal("c1", sent.Data["chatId"])
		assert.Equal("m1", sent.Data["messageId"])
		assert.Equal("d1", sent.Data["donationId"])
		assert.Equal("Alex", sent.Data["donorName"])
		assert.Equal("Milk", sent.Data["productName"])
		assert.Equal("1594336370706", sent.Data["timestamp"])
	}

	// Verify the audit record.
	if assert.Len(db.SavedNotifications, 1) {
		saved := db.SavedNotifications[0]
		assert.Equal("u1", saved.UserID)
		assert.Equal(model.TypeMessage, saved.NotificationType)
		assert.Equal("New Message", saved.Title)
		assert.False(saved.Read)
		assert.False(saved.TimeCreated.IsZero())
	}
}

func TestMessageCreatedMissingField(t *testing.T) {
	assert := assert.New(t)

	db := NewMockDatabaseClient(testUser("u1", "T1"))
	dispatcher := &MockDispatcher{}
	handler := NewMessageCreated(NewNotifier(db, dispatcher))

	// A snapshot with no receiver aborts silently before any side effect.
	snapshot := chatSnapshot()
	delete(snapshot, "receiverId")
	err := handler.HandleMessage(context.Background(), delivery(t, KeyMessageCreated, chatEnvelope(snapshot)))
	assert.NoError(err)
	assert.Empty(dispatcher.Sent)
	assert.Empty(db.SavedNotifications)
}

func TestMessageCreatedUnusualSenderAddress(t *testing.T) {
	assert := assert.New(t)

	db := NewMockDatabaseClient(testUser("u1", "T1"))
	dispatcher := &MockDispatcher{}
	handler := NewMessageCreated(NewNotifier(db, dispatcher))

	// A sender string that doesn't parse as an address still identifies the
	// sender well enough to deliver the message.
	snapshot := chatSnapshot()
	snapshot["senderEmail"] = "not-an-address"
	err := handler.HandleMessage(context.Background(), delivery(t, KeyMessageCreated, chatEnvelope(snapshot)))
	assert.NoError(err)
	if assert.Len(dispatcher.Sent, 1) {
		assert.Equal("not-an-address: Still available?", dispatcher.Sent[0].Body)
	}
	assert.Len(db.SavedNotifications, 1)
}

func TestMessageCreatedMissingSender(t *testing.T) {
	assert := assert.New(t)

	db := NewMockDatabaseClient(testUser("u1", "T1"))
	dispatcher := &MockDispatcher{}
	handler := NewMessageCreated(NewNotifier(db, dispatcher))

	snapshot := chatSnapshot()
	delete(snapshot, "senderEmail")
	err := handler.HandleMessage(context.Background(), delivery(t, KeyMessageCreated, chatEnvelope(snapshot)))
	assert.NoError(err)
	assert.Empty(dispatcher.Sent)
	assert.Empty(db.SavedNotifications)
}

func TestMessageCreatedRecipientMissing(t *testing.T) {
	assert := assert.New(t)

	db := NewMockDatabaseClient()
	dispatcher := &MockDispatcher{}
	handler := NewMessageCreated(NewNotifier(db, dispatcher))

	err := handler.HandleMessage(context.Background(), delivery(t, KeyMessageCreated, chatEnvelope(chatSnapshot())))
	assert.NoError(err)
	assert.Empty(dispatcher.Sent)
	assert.Empty(db.SavedNotifications)
}

func TestMessageCreatedNoDeviceToken(t *testing.T) {
	assert := assert.New(t)

	db := NewMockDatabaseClient(testUser("u1", ""))
	dispatcher := &MockDispatcher{}
	handler := NewMessageCreated(NewNotifier(db, dispatcher))

	err := handler.HandleMessage(context.Background(), delivery(t, KeyMessageCreated, chatEnvelope(chatSnapshot())))
	assert.NoError(err)
	assert.Empty(dispatcher.Sent)
	assert.Empty(db.SavedNotifications)
}

func TestMessageCreatedPreferenceDisabled(t *testing.T) {
	assert := assert.New(t)

	user := testUser("u1", "T1")
	user.Preferences = model.Preferences{"messages": false}
	db := NewMockDatabaseClient(user)
	dispatcher := &MockDispatcher{}
	handler := NewMessageCreated(NewNotifier(db, dispatcher))

	err := handler.HandleMessage(context.Background(), delivery(t, KeyMessageCreated, chatEnvelope(chatSnapshot())))
	assert.NoError(err)
	assert.Empty(dispatcher.Sent)
	assert.Empty(db.SavedNotifications)
}

func TestMessageCreatedDispatchFailure(t *testing.T) {
	assert := assert.New(t)

	db := NewMockDatabaseClient(testUser("u1", "T1"))
	dispatcher := &MockDispatcher{Err: NewRecoverableError("gateway unavailable")}
	handler := NewMessageCreated(NewNotifier(db, dispatcher))

	// A failed dispatch surfaces a recoverable error and records nothing.
	err := handler.HandleMessage(context.Background(), delivery(t, KeyMessageCreated, chatEnvelope(chatSnapshot())))
	assert.Error(err)
	assert.True(IsRecoverable(err))
	assert.Empty(db.SavedNotifications)
}
