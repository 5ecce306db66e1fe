// Package textutil converts between raw serial bytes and the text shown in
// the terminal log.
//
// It covers three concerns:
//
//   - Hex: ToHex/FromHex round-trip contiguous hex, ToHexDisplay renders
//     space separated bytes for the log.
//   - Caret escaping: control characters are shown as ^A..^_ so binary
//     noise on the line stays visible.
//   - Newline styles: the terminator appended to outgoing lines and the
//     NewlineFilter that renders inbound chunks, including a CR/LF pair
//     split across two reads.
//
// Everything here is pure and safe for concurrent use, except
// NewlineFilter which carries state between chunks and belongs to a single
// session.
package textutil
