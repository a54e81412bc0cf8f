package db

import (
	"context"
	"encoding/json"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/foodbridge/notifier/model"
)

// SaveNotification saves a single notification into the database. The ID
// assigned by the database is written back into the notification structure.
func (c *Client) SaveNotification(ctx context.Context, notification *model.Notification) error {
	wrapMsg := "unable to save notification"

	// Marshal the event-specific payload.
	data := notification.Data
	if data == nil {
		data = map[string]string{}
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	// Build the statement to insert the notification.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Insert("notifications").
		Columns(
			"user_id",
			"notification_type",
			"title",
			"body",
			"time_created",
			"seen",
			"payload").
		Values(
			notification.UserID,
			notification.NotificationType,
			notification.Title,
			notification.Body,
			notification.TimeCreated,
			notification.Read,
			payload).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	// Execute the insert statement, scanning the ID into the notification structure.
	row := c.db.QueryRowContext(ctx, statement, args...)
	err = row.Scan(&notification.ID)
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	return nil
}
