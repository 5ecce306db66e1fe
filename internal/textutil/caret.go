package textutil

import "strings"

// ToCaretEscaped replaces control characters below 0x20 with caret notation
// (0x0D becomes "^M"). When newlineAware is set, line feeds are kept as-is so
// the log still breaks lines.
func ToCaretEscaped(s string, newlineAware bool) string {
	if !needsEscape(s, newlineAware) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isEscaped(c, newlineAware) {
			b.WriteByte('^')
			b.WriteByte(c + 0x40)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func needsEscape(s string, newlineAware bool) bool {
	for i := 0; i < len(s); i++ {
		if isEscaped(s[i], newlineAware) {
			return true
		}
	}
	return false
}

func isEscaped(c byte, newlineAware bool) bool {
	return c < 0x20 && !(newlineAware && c == '\n')
}
