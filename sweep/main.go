// Package sweep implements the scheduled expiry sweep: a periodic scan for
// food items that are expiring within a day or have already sat expired for
// one, with one notification sequence fanned out per matching item.
package sweep

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/foodbridge/notifier/common"
	"github.com/foodbridge/notifier/model"
)

var log = logrus.WithFields(logrus.Fields{"package": "sweep"})

// DatabaseClient describes the database operations used by the sweep.
type DatabaseClient interface {
	ListExpiringSoon(ctx context.Context, from, until time.Time) ([]model.FoodItem, error)
	ListExpired(ctx context.Context, cutoff time.Time) ([]model.FoodItem, error)
}

// Notifier describes the gate-dispatch-record sequence applied to each item.
type Notifier interface {
	Notify(ctx context.Context, category model.Category, notification *model.Notification) error
}

// Sweeper periodically scans the food items and notifies their owners. When
// awaitCompletion is false the per-item sequences are fire-and-forget and any
// item lost to a transient failure waits for the next run.
type Sweeper struct {
	db              DatabaseClient
	notifier        Notifier
	interval        time.Duration
	awaitCompletion bool
	now             func() time.Time
}

// New creates a new sweeper.
func New(db DatabaseClient, notifier Notifier, interval time.Duration, awaitCompletion bool) *Sweeper {
	return &Sweeper{
		db:              db,
		notifier:        notifier,
		interval:        interval,
		awaitCompletion: awaitCompletion,
		now:             time.Now,
	}
}

// Run runs the sweep immediately and then once per interval until the context
// is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			log.Errorf("expiry sweep failed: %s", err.Error())
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// yesterdayMidnight returns the start of the previous day in the given time's
// location. An item whose expiry is before this has been expired for at least
// a full day.
func yesterdayMidnight(now time.Time) time.Time {
	year, month, day := now.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, now.Location()).AddDate(0, 0, -1)
}

// RunOnce performs a single sweep. The returned error reflects only the two
// queries; per-item failures are logged by the item sequences themselves.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	now := s.now()

	expiring, err := s.db.ListExpiringSoon(ctx, now, now.Add(24*time.Hour))
	if err != nil {
		return err
	}
	expired, err := s.db.ListExpired(ctx, yesterdayMidnight(now))
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	launch := func(items []model.FoodItem, build func(*model.FoodItem) *model.Notification) {
		for i := range items {
			item := items[i]
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.notifyOwner(ctx, &item, build)
			}()
		}
	}
	launch(expiring, expiryReminder)
	launch(expired, expiredAlert)

	if s.awaitCompletion {
		wg.Wait()
	}
	return nil
}

// notifyOwner runs the notification sequence for a single food item.
func (s *Sweeper) notifyOwner(ctx context.Context, item *model.FoodItem, build func(*model.FoodItem) *model.Notification) {
	if item.UserID == "" || item.ProductName == "" || item.ExpiryDate.IsZero() {
		log.Infof("ignoring food item %s: missing required fields", item.ID)
		return
	}
	err := s.notifier.Notify(ctx, model.CategoryExpiry, build(item))
	if err != nil {
		log.Errorf("unable to notify the owner of food item %s: %s", item.ID, err.Error())
	}
}

func expiryReminder(item *model.FoodItem) *model.Notification {
	return &model.Notification{
		UserID:           item.UserID,
		NotificationType: model.TypeExpiry,
		Title:            "Food Expiry Reminder",
		Body:             fmt.Sprintf("Your %s is expiring soon!", item.ProductName),
		Data: map[string]string{
			"foodItemId": item.ID,
			"expiryDate": common.FormatTimestamp(item.ExpiryDate),
		},
	}
}

func expiredAlert(item *model.FoodItem) *model.Notification {
	return &model.Notification{
		UserID:           item.UserID,
		NotificationType: model.TypeExpired,
		Title:            "Food Expired Alert",
		Body:             fmt.Sprintf("Your %s has expired!", item.ProductName),
		Data: map[string]string{
			"foodItemId": item.ID,
			"expiryDate": common.FormatTimestamp(item.ExpiryDate),
		},
	}
}
