package db

import "database/sql"

// Client provides access to the notification service's database.
type Client struct {
	db *sql.DB
}

// NewClient returns a new database client backed by an established connection.
func NewClient(db *sql.DB) *Client {
	return &Client{db: db}
}
