package models

import "time"

// User represents a user in the system
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// UserActivity is a row of the last-expense scan used by the stale-data
// sweep.
type UserActivity struct {
	UserID      int64     `json:"user_id"`
	Email       string    `json:"email"`
	LastExpense time.Time `json:"last_expense"`
}
