// Package memo implements the fixed-width transaction annotation codec.
// On-chain memos are an 8-byte field; text is encoded as UTF-8 with zero
// padding. Oversized input is rejected, never truncated.
package memo

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Size is the fixed on-chain memo width in bytes.
const Size = 8

// ErrTooLong is returned when the encoded text exceeds Size bytes.
var ErrTooLong = errors.New("memo exceeds 8-byte limit")

// Encode renders text as a zero-padded fixed-width memo field. NUL bytes in
// the input are rejected: they would be indistinguishable from padding on
// decode.
func Encode(text string) ([]byte, error) {
	if len(text) > Size {
		return nil, fmt.Errorf("%w: %q is %d bytes", ErrTooLong, text, len(text))
	}
	if strings.ContainsRune(text, 0) {
		return nil, fmt.Errorf("memo: %q contains a NUL byte", text)
	}
	buf := make([]byte, Size)
	copy(buf, text)
	return buf, nil
}

// Decode recovers the text from a memo field, trimming zero padding.
func Decode(buf []byte) (string, error) {
	if len(buf) != Size {
		return "", fmt.Errorf("memo: want %d bytes, have %d", Size, len(buf))
	}
	text := string(bytes.TrimRight(buf, "\x00"))
	if !utf8.ValidString(text) {
		return "", fmt.Errorf("memo: invalid UTF-8 payload")
	}
	return text, nil
}
