package db

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/foodbridge/notifier/model"
)

// listFoodItems runs a food item query built from the given expiry conditions.
func (c *Client) listFoodItems(ctx context.Context, wrapMsg string, conditions ...sq.Sqlizer) ([]model.FoodItem, error) {

	// Build the SQL query and arguments.
	builder := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select("id", "user_id", "product_name", "expiry_date").
		From("food_items")
	for _, condition := range conditions {
		builder = builder.Where(condition)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Query the database.
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	defer rows.Close()

	// Collect the matching food items.
	var items []model.FoodItem
	for rows.Next() {
		var item model.FoodItem
		err = rows.Scan(&item.ID, &item.UserID, &item.ProductName, &item.ExpiryDate)
		if err != nil {
			return nil, errors.Wrap(err, wrapMsg)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return items, nil
}

// ListExpiringSoon lists the food items whose expiry timestamp falls within the
// given window, inclusive on both ends.
func (c *Client) ListExpiringSoon(ctx context.Context, from, until time.Time) ([]model.FoodItem, error) {
	return c.listFoodItems(
		ctx,
		"unable to list food items that are expiring soon",
		sq.GtOrEq{"expiry_date": from},
		sq.LtOrEq{"expiry_date": until},
	)
}

// ListExpired lists the food items whose expiry timestamp is before the given
// cutoff.
func (c *Client) ListExpired(ctx context.Context, cutoff time.Time) ([]model.FoodItem, error) {
	return c.listFoodItems(
		ctx,
		"unable to list expired food items",
		sq.Lt{"expiry_date": cutoff},
	)
}
