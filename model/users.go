package model

// Category identifies a notification preference category.
type Category string

// The set of notification preference categories recognized by the app.
const (
	CategoryMessages Category = "messages"
	CategoryRequests Category = "requests"
	CategoryExpiry   Category = "expiry"
)

// DefaultEnabled records the default setting for each preference category. A user
// who has never touched the notification settings screen has no preference map at
// all, and a user who has only toggled some categories has a partial one; in both
// cases the defaults below apply to whatever is absent.
var DefaultEnabled = map[Category]bool{
	CategoryMessages: true,
	CategoryRequests: true,
	CategoryExpiry:   true,
}

// Preferences is a user's stored per-category notification settings. A nil map
// means that the user has never stored any preferences.
type Preferences map[string]bool

// User represents a single user of the app. AverageRating and ReviewCount are
// derived fields maintained by the review recompute operation.
type User struct {
	ID            string
	Email         string
	FCMToken      string
	Preferences   Preferences
	AverageRating float64
	ReviewCount   int
}

// NotificationsEnabled determines whether notifications in the given category may
// be sent to the user. Only an explicitly stored `false` disables a category.
func (u *User) NotificationsEnabled(category Category) bool {
	if u.Preferences == nil {
		return DefaultEnabled[category]
	}
	enabled, ok := u.Preferences[string(category)]
	if !ok {
		return DefaultEnabled[category]
	}
	return enabled
}
