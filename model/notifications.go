package model

import "time"

// The notification types recorded in the audit collection and carried in the push
// payload so that the client can route taps to the right screen.
const (
	TypeExpiry          = "expiry"
	TypeExpired         = "expired"
	TypeMessage         = "message"
	TypeRequest         = "request"
	TypeRequestAccepted = "request_accepted"
	TypeRequestDeclined = "request_declined"
)

// Notification represents a single notification to be recorded in the database.
// Image is display-only: it rides along on the push payload but is not persisted.
type Notification struct {
	ID               string
	UserID           string
	NotificationType string
	Title            string
	Body             string
	TimeCreated      time.Time
	Read             bool
	Data             map[string]string
	Image            string
}
