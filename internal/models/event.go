package models

import "time"

// Event represents an auditable account action.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`  // e.g., "user.login", "password.reset.confirm"
	Level     string    `json:"level"` // e.g., "info", "warn"
	Message   string    `json:"message"`
	UserID    *string   `json:"user_id,omitempty"` // Nullable for anonymous actions
	CreatedAt time.Time `json:"created_at"`
}
