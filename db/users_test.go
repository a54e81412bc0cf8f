package db

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

var userColumns = []string{
	"id", "email", "fcm_token", "notification_preferences", "average_rating", "review_count",
}

func TestGetUser(t *testing.T) {
	assert := assert.New(t)

	db, mock, err := sqlmock.New()
	ctx := context.Background()
	assert.NoError(err, "unable to open the mock database connection")
	defer db.Close()

	// Set up the expectations.
	rows := sqlmock.NewRows(userColumns).
		AddRow("u1", "donor@example.org", "T1", []byte(`{"requests":false}`), 4.5, 3)
	mock.ExpectQuery("SELECT id, email, fcm_token, notification_preferences, average_rating, review_count FROM users WHERE id =").
		WithArgs("u1").
		WillReturnRows(rows)

	// Look up the user.
	user, err := NewClient(db).GetUser(ctx, "u1")
	assert.NoError(err, "unexpected error occurred while looking up the user")
	if assert.NotNil(user) {
		assert.Equal("u1", user.ID)
		assert.Equal("donor@example.org", user.Email)
		assert.Equal("T1", user.FCMToken)
		assert.Equal(4.5, user.AverageRating)
		assert.Equal(3, user.ReviewCount)
		assert.False(user.NotificationsEnabled("requests"))
		assert.True(user.NotificationsEnabled("messages"))
	}

	// Verify that all mock expectations were met.
	err = mock.ExpectationsWereMet()
	assert.NoError(err, "not all mock expectations were met")
}

func TestGetUserNoTokenOrPreferences(t *testing.T) {
	assert := assert.New(t)

	db, mock, err := sqlmock.New()
	ctx := context.Background()
	assert.NoError(err, "unable to open the mock database connection")
	defer db.Close()

	// Set up the expectations. Token, preferences and derived fields are all NULL.
	rows := sqlmock.NewRows(userColumns).
		AddRow("u2", "requester@example.org", nil, nil, nil, nil)
	mock.ExpectQuery("SELECT id, email, fcm_token, notification_preferences, average_rating, review_count FROM users WHERE id =").
		WithArgs("u2").
		WillReturnRows(rows)

	// Look up the user.
	user, err := NewClient(db).GetUser(ctx, "u2")
	assert.NoError(err, "unexpected error occurred while looking up the user")
	if assert.NotNil(user) {
		assert.Equal("", user.FCMToken)
		assert.Nil(user.Preferences)
		assert.True(user.NotificationsEnabled("requests"))
	}

	// Verify that all mock expectations were met.
	err = mock.ExpectationsWereMet()
	assert.NoError(err, "not all mock expectations were met")
}

func TestGetUserNotFound(t *testing.T) {
	assert := assert.New(t)

	db, mock, err := sqlmock.New()
	ctx := context.Background()
	assert.NoError(err, "unable to open the mock database connection")
	defer db.Close()

	// Set up the expectations.
	mock.ExpectQuery("SELECT id, email, fcm_token, notification_preferences, average_rating, review_count FROM users WHERE id =").
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows(userColumns))

	// A missing user yields neither a user nor an error.
	user, err := NewClient(db).GetUser(ctx, "nobody")
	assert.NoError(err, "a missing user should not be reported as an error")
	assert.Nil(user)

	// Verify that all mock expectations were met.
	err = mock.ExpectationsWereMet()
	assert.NoError(err, "not all mock expectations were met")
}
