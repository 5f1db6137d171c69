package model

import "time"

// ShoppingList is owned by a User through UserID. Ownership is optional:
// a nil UserID is a valid, unowned list.
type ShoppingList struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	UserID      *int64     `json:"user_id"`
	CreatedAt   *time.Time `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}
