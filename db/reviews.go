package db

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/foodbridge/notifier/model"
)

// listDonorReviews retrieves every review written about the given donor.
func listDonorReviews(ctx context.Context, tx *sql.Tx, donorID string) ([]model.Review, error) {
	wrapMsg := fmt.Sprintf("unable to list reviews for donor `%s`", donorID)

	// Build the SQL query and arguments.
	query, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select("id", "donor_id", "communication_rating", "food_quality_rating", "process_rating").
		From("reviews").
		Where(sq.Eq{"donor_id": donorID}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Query the database.
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	defer rows.Close()

	// Collect the reviews. Sub-ratings may be absent in reviews written by
	// older app versions, so they're scanned as nullable values.
	var reviews []model.Review
	for rows.Next() {
		var review model.Review
		var comm, food, process sql.NullFloat64
		err = rows.Scan(&review.ID, &review.DonorID, &comm, &food, &process)
		if err != nil {
			return nil, errors.Wrap(err, wrapMsg)
		}
		if comm.Valid {
			review.Communication = &comm.Float64
		}
		if food.Valid {
			review.FoodQuality = &food.Float64
		}
		if process.Valid {
			review.Process = &process.Float64
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return reviews, nil
}

// RecomputeDonorRating rescans the donor's reviews and stores the aggregated
// rating summary on the donor's user record, touching only the two derived
// columns. The donor row is locked for the duration of the transaction so that
// concurrent review writes serialize their recomputes instead of losing
// updates. A missing donor is not an error: the caller gets a nil summary.
func (c *Client) RecomputeDonorRating(ctx context.Context, donorID string) (*model.RatingSummary, error) {
	wrapMsg := fmt.Sprintf("unable to recompute the rating for donor `%s`", donorID)

	// Begin a database transaction.
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Lock the donor's user row.
	lockQuery, lockArgs, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select("id").
		From("users").
		Where(sq.Eq{"id": donorID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	var lockedID string
	err = tx.QueryRowContext(ctx, lockQuery, lockArgs...).Scan(&lockedID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Rescan the donor's reviews and aggregate them.
	reviews, err := listDonorReviews(ctx, tx, donorID)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	summary := model.AggregateRating(reviews)

	// Store the derived fields on the donor's user record.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Update("users").
		Set("average_rating", summary.AverageRating).
		Set("review_count", summary.ReviewCount).
		Where(sq.Eq{"id": donorID}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	_, err = tx.ExecContext(ctx, statement, args...)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Commit the transaction.
	err = tx.Commit()
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return &summary, nil
}
