package stream

import "unicode/utf8"

// utf8Decoder is a stateful streaming decoder. Read boundaries can land in
// the middle of a multi-byte rune; the decoder holds the partial sequence
// back until the remaining bytes arrive.
type utf8Decoder struct {
	pending []byte
}

// Decode appends p to any held-back bytes and returns the longest prefix
// that ends on a complete rune boundary. The remainder is retained for the
// next call.
func (d *utf8Decoder) Decode(p []byte) string {
	buf := append(d.pending, p...)
	d.pending = nil

	cut := len(buf)
	for i := len(buf) - 1; i >= 0 && i > len(buf)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(buf[i]) {
			continue
		}
		if !utf8.FullRune(buf[i:]) {
			cut = i
		}
		break
	}

	if cut < len(buf) {
		d.pending = append(d.pending, buf[cut:]...)
	}
	return string(buf[:cut])
}

// Flush returns whatever incomplete sequence is still held back, decoded
// with replacement characters. Called at end of stream; a non-empty result
// means the transport cut the stream mid-rune.
func (d *utf8Decoder) Flush() string {
	if len(d.pending) == 0 {
		return ""
	}
	out := string(d.pending)
	d.pending = nil
	return out
}
