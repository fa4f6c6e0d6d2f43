// Package queue defines the activity messages exchanged over RabbitMQ, the
// publisher used by the services and the consumer that writes them to disk.
package queue

import "time"

// Activity types published after successful operations.
const (
	UserRegistered = "user.registered"
	UserLoggedIn   = "user.logged_in"
	UserLoggedOut  = "user.logged_out"
	UserDeleted    = "user.deleted"
	EventCreated   = "event.created"
	EventUpdated   = "event.updated"
	EventDeleted   = "event.deleted"
)

// ActivityEvent is one audit record. It carries enough context for the
// consumer to log it without querying the database.
type ActivityEvent struct {
	Type       string `json:"type"`
	UserID     string `json:"user_id"`
	UserName   string `json:"user_name,omitempty"`
	EventID    string `json:"event_id,omitempty"`
	EventName  string `json:"event_name,omitempty"`
	Detail     string `json:"detail,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

// NewActivity stamps an event of the given type for userID.
func NewActivity(typ, userID string, at time.Time) ActivityEvent {
	return ActivityEvent{Type: typ, UserID: userID, OccurredAt: at.UTC().Format(time.RFC3339)}
}
