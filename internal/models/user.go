package models

import "time"

// User represents a row of the users table.
type User struct {
	ID        int64     `db:"id"`         // Primary key, generated by the store
	Name      string    `db:"name"`       // Display name
	Email     string    `db:"email"`      // Contact email, not validated
	CreatedAt time.Time `db:"created_at"` // Set by the store on insert
}
