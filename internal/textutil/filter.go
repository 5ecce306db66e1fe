package textutil

import "strings"

// filterState is the pending-newline state of a NewlineFilter
type filterState int

const (
	// stateIdle means no carriage return is held back
	stateIdle filterState = iota
	// stateAwaitingLF means the previous chunk ended in a CR that has not been shown yet
	stateAwaitingLF
)

// NewlineFilter renders inbound text chunks for the log view.
//
// Under the CRLF style a CR directly followed by LF is shown as a single line
// break. A CR that ends a chunk is held back until the next chunk arrives: if
// that chunk starts with LF the pair collapses into one line break, otherwise
// the CR is shown as "^M". Every other control character is caret escaped.
//
// A NewlineFilter is not safe for concurrent use.
type NewlineFilter struct {
	newline Newline
	state   filterState
}

// NewNewlineFilter creates a filter for the given style
func NewNewlineFilter(newline Newline) *NewlineFilter {
	return &NewlineFilter{newline: newline}
}

// Newline returns the style the filter renders for
func (f *NewlineFilter) Newline() Newline {
	return f.newline
}

// Pending reports whether a carriage return is currently held back
func (f *NewlineFilter) Pending() bool {
	return f.state == stateAwaitingLF
}

// Render converts one inbound chunk into display text.
func (f *NewlineFilter) Render(chunk []byte) string {
	msg := strings.ToValidUTF8(string(chunk), "�")
	if f.newline != NewlineCRLF {
		return ToCaretEscaped(msg, true)
	}
	if len(msg) == 0 {
		return ""
	}

	var prefix string
	if f.state == stateAwaitingLF {
		// a leading LF completes the held CR; the LF alone renders the break
		if msg[0] != '\n' {
			prefix = "^M"
		}
		f.state = stateIdle
	}

	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	if strings.HasSuffix(msg, "\r") {
		msg = msg[:len(msg)-1]
		f.state = stateAwaitingLF
	}

	return prefix + ToCaretEscaped(msg, true)
}

// Flush returns the display text for a held carriage return (if any) and
// resets the filter. Call it when the stream ends.
func (f *NewlineFilter) Flush() string {
	if f.state == stateAwaitingLF {
		f.state = stateIdle
		return "^M"
	}
	return ""
}

// Reset drops any held carriage return without rendering it
func (f *NewlineFilter) Reset() {
	f.state = stateIdle
}
