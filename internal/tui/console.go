package tui

import (
	"strings"

	"github.com/muurk/btterm/internal/terminal"
)

// DefaultMaxLines bounds the log kept for the viewport
const DefaultMaxLines = 5000

// Log is the terminal screen's Console. It is only used from the Bubble
// Tea goroutine, so it carries no lock.
type Log struct {
	lines    []string // completed, styled lines
	partial  string   // raw received text after the last line break
	notice   string
	maxLines int
	version  int // bumped on every change
}

var _ terminal.Console = (*Log)(nil)

// NewLog creates an empty log
func NewLog() *Log {
	return &Log{maxLines: DefaultMaxLines}
}

// Status appends a status line
func (l *Log) Status(text string) {
	l.breakLine()
	l.push(StatusStyle.Render(text))
}

// Sent appends an echoed outgoing message
func (l *Log) Sent(text string) {
	l.breakLine()
	l.push(SentStyle.Render(text))
}

// Received appends inbound text, which may end mid-line
func (l *Log) Received(text string) {
	parts := strings.Split(text, "\n")
	for i, part := range parts {
		if i == len(parts)-1 {
			l.partial += part
			break
		}
		l.push(ReceivedStyle.Render(l.partial + part))
		l.partial = ""
	}
	l.version++
}

// Notice records a transient message shown until the next key press
func (l *Log) Notice(text string) {
	l.notice = text
	l.version++
}

// ClearNotice removes the current notice
func (l *Log) ClearNotice() {
	if l.notice != "" {
		l.notice = ""
		l.version++
	}
}

// CurrentNotice returns the notice to display, if any
func (l *Log) CurrentNotice() string {
	return l.notice
}

// Clear empties the log
func (l *Log) Clear() {
	l.lines = nil
	l.partial = ""
	l.version++
}

// Len returns the number of completed lines
func (l *Log) Len() int {
	return len(l.lines)
}

// Version changes whenever the content changes
func (l *Log) Version() int {
	return l.version
}

// String renders the log for the viewport
func (l *Log) String() string {
	content := strings.Join(l.lines, "\n")
	if l.partial != "" {
		if content != "" {
			content += "\n"
		}
		content += ReceivedStyle.Render(l.partial)
	}
	return content
}

// breakLine terminates a pending partial line so the next entry starts fresh
func (l *Log) breakLine() {
	if l.partial != "" {
		l.push(ReceivedStyle.Render(l.partial))
		l.partial = ""
	}
}

func (l *Log) push(line string) {
	l.lines = append(l.lines, line)
	if over := len(l.lines) - l.maxLines; l.maxLines > 0 && over > 0 {
		l.lines = append([]string(nil), l.lines[over:]...)
	}
	l.version++
}
