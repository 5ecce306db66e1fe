package mirror

import "time"

// Event types
const (
	TypeStatus   = "status"
	TypeSent     = "sent"
	TypeReceived = "received"
	TypeNotice   = "notice"
)

// Event is one log entry as sent to WebSocket clients
type Event struct {
	Type string    `json:"type"`
	Text string    `json:"text"`
	Time time.Time `json:"time"`
}
