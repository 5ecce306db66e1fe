package tui

import (
	"strings"
	"testing"

	"github.com/muurk/btterm/internal/ui"
)

func TestLog_ReceivedAcrossChunks(t *testing.T) {
	l := NewLog()

	l.Received("hel")
	l.Received("lo\nwor")
	if l.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 completed line", l.Len())
	}
	if got := l.String(); !strings.Contains(got, "hello") || !strings.Contains(got, "wor") {
		t.Errorf("String() = %q", got)
	}

	// A status line never joins a partial received line
	l.Status("connection lost: eof")
	lines := strings.Split(l.String(), "\n")
	if len(lines) != 3 {
		t.Fatalf("String() has %d lines, want 3: %q", len(lines), l.String())
	}
	if !strings.Contains(lines[1], "wor") || !strings.Contains(lines[2], "connection lost") {
		t.Errorf("lines = %q", lines)
	}
}

func TestLog_Notice(t *testing.T) {
	l := NewLog()
	before := l.Version()

	l.Notice("not connected")
	if l.CurrentNotice() != "not connected" {
		t.Errorf("CurrentNotice() = %q", l.CurrentNotice())
	}
	if l.Version() == before {
		t.Error("Notice() should bump the version")
	}
	if l.Len() != 0 {
		t.Error("notices are not part of the log")
	}

	l.ClearNotice()
	if l.CurrentNotice() != "" {
		t.Error("ClearNotice() should remove the notice")
	}
}

func TestLog_MaxLines(t *testing.T) {
	l := NewLog()
	l.maxLines = 3

	for _, s := range []string{"a", "b", "c", "d", "e"} {
		l.Sent(s)
	}
	if l.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", l.Len())
	}
	if got := l.String(); strings.Contains(got, "a") || !strings.Contains(got, "e") {
		t.Errorf("oldest lines should be dropped, got %q", got)
	}
}

func TestLog_Clear(t *testing.T) {
	l := NewLog()
	l.Sent("abc")
	l.Received("partial")

	l.Clear()
	if l.String() != "" || l.Len() != 0 {
		t.Errorf("Clear() left %q", l.String())
	}
}

func TestReceivedStyle_UsesAccent(t *testing.T) {
	if got := ReceivedStyle.GetForeground(); got != ui.AccentColor {
		t.Errorf("ReceivedStyle foreground = %v, want %v", got, ui.AccentColor)
	}
}
