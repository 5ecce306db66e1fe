package textutil

import (
	"fmt"
	"strings"
)

// Newline is the line terminator convention used for outgoing framing and
// inbound display.
type Newline string

const (
	// NewlineCRLF terminates lines with carriage return + line feed
	NewlineCRLF Newline = "\r\n"
	// NewlineLF terminates lines with a single line feed
	NewlineLF Newline = "\n"
)

// DefaultNewline is the style used when nothing is configured
const DefaultNewline = NewlineCRLF

// ParseNewline parses a configured style name ("crlf" or "lf").
func ParseNewline(name string) (Newline, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "crlf", "cr+lf", "\\r\\n":
		return NewlineCRLF, nil
	case "lf", "\\n":
		return NewlineLF, nil
	default:
		return "", fmt.Errorf("unknown newline style %q (expected crlf or lf)", name)
	}
}

// Name returns the configuration name of the style
func (n Newline) Name() string {
	switch n {
	case NewlineCRLF:
		return "crlf"
	case NewlineLF:
		return "lf"
	default:
		return fmt.Sprintf("Newline(%q)", string(n))
	}
}

// String implements fmt.Stringer
func (n Newline) String() string {
	return n.Name()
}

// Bytes returns the raw terminator bytes
func (n Newline) Bytes() []byte {
	return []byte(n)
}
