package domain

import "time"

// HistoryEntry is one search submitted by a signed-in user.
type HistoryEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Query     string    `json:"query"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
}

// MaxHistoryQueryLength truncates stored queries.
const MaxHistoryQueryLength = 500

// User is an account able to own bangs, settings and history.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
