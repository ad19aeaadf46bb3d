package kafka

import "time"

type EventType string

const (
	EventBorrowed EventType = "BORROWED"
	EventReturned EventType = "RETURNED"
)

// LendingEvent is published on every successful borrow or return and
// consumed by the stats materializer.
type LendingEvent struct {
	EventType EventType `json:"eventType"`
	RecordUid string    `json:"recordUid"`
	BookUid   string    `json:"bookUid"`
	UserName  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}
