package events

import "time"

const NotificationRequestedTopic = "hr.notification.v1"

type NotificationRequestedEvent struct {
	EventType  string    `json:"event_type"`
	UserID     string    `json:"user_id"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Kind       string    `json:"kind"`
	OccurredAt time.Time `json:"occurred_at"`
}
