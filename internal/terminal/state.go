package terminal

import "fmt"

// State is the connection state as seen by the session
type State int

const (
	Disconnected State = iota
	Pending
	Connected
)

// String returns a human-readable name for the state
func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Pending:
		return "pending"
	case Connected:
		return "connected"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}
