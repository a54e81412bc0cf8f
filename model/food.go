package model

import "time"

// FoodItem represents a food item listed for donation. This service only ever
// reads food items; the mobile client owns their lifecycle.
type FoodItem struct {
	ID          string
	UserID      string
	ProductName string
	ExpiryDate  time.Time
}
