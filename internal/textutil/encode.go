package textutil

import "fmt"

// EncodeOutgoing turns user input into the bytes to transmit and the message
// to echo in the log.
//
// In text mode the newline is appended to the text as-is. In hex mode the
// input is parsed as hex (separators allowed), the newline bytes are appended,
// and the echoed message is the spaced hex of everything that will be sent.
func EncodeOutgoing(text string, hexMode bool, newline Newline) (string, []byte, error) {
	if !hexMode {
		data := make([]byte, 0, len(text)+len(newline))
		data = append(data, text...)
		data = append(data, newline...)
		return text, data, nil
	}

	payload, err := FromHex(StripHexSpacing(text))
	if err != nil {
		return "", nil, fmt.Errorf("invalid hex input: %w", err)
	}
	data := append(payload, newline.Bytes()...)
	return ToHexDisplay(data), data, nil
}
