package model

// RequestStatus is the lifecycle state of a donation request.
type RequestStatus string

// The donation request statuses that drive notifications. Other statuses may
// appear in the data but are ignored by this service.
const (
	StatusPending  RequestStatus = "Pending"
	StatusAccepted RequestStatus = "Accepted"
	StatusDeclined RequestStatus = "Declined"
)

// DonationRequest represents a request by one user to pick up another user's
// food item. Only status transitions are acted on here; the request itself is
// never mutated by this service.
type DonationRequest struct {
	ID            string
	DonorID       string
	RequesterID   string
	RequesterName string
	DonorName     string
	ProductName   string
	ProductImage  string
	PickupTime    string
	Status        RequestStatus
}
