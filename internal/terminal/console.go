package terminal

// Console receives everything the session wants to show the user
type Console interface {
	// Status shows a connection status line
	Status(text string)
	// Sent records an outgoing message as it should be logged
	Sent(text string)
	// Received appends rendered inbound text
	Received(text string)
	// Notice shows a transient message that is not part of the log
	Notice(text string)
}

// MultiConsole fans every call out to each wrapped console in order
type MultiConsole []Console

func (m MultiConsole) Status(text string) {
	for _, c := range m {
		c.Status(text)
	}
}

func (m MultiConsole) Sent(text string) {
	for _, c := range m {
		c.Sent(text)
	}
}

func (m MultiConsole) Received(text string) {
	for _, c := range m {
		c.Received(text)
	}
}

func (m MultiConsole) Notice(text string) {
	for _, c := range m {
		c.Notice(text)
	}
}
