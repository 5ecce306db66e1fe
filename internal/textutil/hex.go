package textutil

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrOddLength is returned by FromHex when the input has an odd number of digits
	ErrOddLength = errors.New("hex string has odd length")

	// ErrInvalidHexDigit is returned by FromHex for characters outside [0-9a-fA-F]
	ErrInvalidHexDigit = errors.New("invalid hex digit")
)

const hexDigits = "0123456789ABCDEF"

// ToHex encodes data as contiguous upper-case hex (e.g. "48656C6C6F").
func ToHex(data []byte) string {
	var b strings.Builder
	b.Grow(len(data) * 2)
	for _, c := range data {
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&0x0F])
	}
	return b.String()
}

// ToHexDisplay encodes data as upper-case hex bytes separated by spaces
// (e.g. "48 65 6C"). This is the form used in the log view.
func ToHexDisplay(data []byte) string {
	var b strings.Builder
	b.Grow(len(data) * 3)
	for i, c := range data {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&0x0F])
	}
	return b.String()
}

// FromHex decodes a contiguous hex string. Both cases are accepted.
// It fails on odd-length input or any character that is not a hex digit.
func FromHex(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("%w: %d digits", ErrOddLength, len(s))
	}

	out := make([]byte, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		hi, ok := hexValue(s[i])
		if !ok {
			return nil, fmt.Errorf("%w %q at position %d", ErrInvalidHexDigit, s[i], i)
		}
		lo, ok := hexValue(s[i+1])
		if !ok {
			return nil, fmt.Errorf("%w %q at position %d", ErrInvalidHexDigit, s[i+1], i+1)
		}
		out[i/2] = hi<<4 | lo
	}
	return out, nil
}

// StripHexSpacing removes the separators a user may type between hex bytes
// (spaces, tabs, colons), so "48 65:6c" can be passed to FromHex.
func StripHexSpacing(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', ':':
			return -1
		}
		return r
	}, s)
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
