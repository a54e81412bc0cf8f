package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/foodbridge/notifier/model"
)

// GetUser looks up a user by ID. A missing user is not an error: the caller
// gets a nil user and decides what to do about it.
func (c *Client) GetUser(ctx context.Context, userID string) (*model.User, error) {
	wrapMsg := fmt.Sprintf("unable to look up user `%s`", userID)

	// Build the SQL query and arguments.
	query, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select("id", "email", "fcm_token", "notification_preferences", "average_rating", "review_count").
		From("users").
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Query the database.
	var (
		user        model.User
		fcmToken    sql.NullString
		preferences []byte
		avgRating   sql.NullFloat64
		reviewCount sql.NullInt64
	)
	row := c.db.QueryRowContext(ctx, query, args...)
	err = row.Scan(&user.ID, &user.Email, &fcmToken, &preferences, &avgRating, &reviewCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	// An absent token or preference document simply means that the user has
	// never registered a device or stored any settings.
	user.FCMToken = fcmToken.String
	if len(preferences) > 0 {
		if err := json.Unmarshal(preferences, &user.Preferences); err != nil {
			return nil, errors.Wrap(err, wrapMsg)
		}
	}
	user.AverageRating = avgRating.Float64
	user.ReviewCount = int(reviewCount.Int64)

	return &user, nil
}
