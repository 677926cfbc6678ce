// Package queue defines the activity events published to the message broker
// and the background consumer that records them.
package queue

// Event names published by the server.
const (
	EventUserRegistered = "user.registered"
	EventPromptShared   = "prompt.shared"
)

// ActivityEvent is the payload placed on the activity queue. It carries
// enough for downstream consumers (activity log, analytics) without another
// trip to the database.
type ActivityEvent struct {
	Name       string `json:"name"`
	UserID     int64  `json:"user_id"`
	Username   string `json:"username,omitempty"`
	PromptID   int64  `json:"prompt_id,omitempty"`
	OccurredAt string `json:"occurred_at"` // RFC 3339 UTC
}
