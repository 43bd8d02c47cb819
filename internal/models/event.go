package models

import "time"

// Event types recorded by the audit log.
const (
	EventSignup          = "user.signup"
	EventLogin           = "user.login"
	EventPasswordChanged = "user.password_changed"
	EventAuthFailed      = "auth.failed"
)

// Event represents a loggable account action.
type Event struct {
	ID        string    `json:"_id,omitempty" bson:"_id,omitempty"`
	Type      string    `json:"type" bson:"type"`   // e.g., "user.login", "auth.failed"
	Level     string    `json:"level" bson:"level"` // e.g., "info", "warn", "error"
	Message   string    `json:"message" bson:"message"`
	UserID    string    `json:"user_id,omitempty" bson:"user_id,omitempty"` // Empty when no user was resolved
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
