// Package textcodec converts text to and from standard base64.
package textcodec

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrInvalidBase64 is returned when the input is not valid standard base64.
var ErrInvalidBase64 = errors.New("invalid base64 input")

// strictEncoding rejects non-zero trailing bits so every accepted input re-encodes
// to itself.
var strictEncoding = base64.StdEncoding.Strict()

// Encode returns the standard base64 encoding of the bytes of text.
func Encode(text string) string {
	return strictEncoding.EncodeToString([]byte(text))
}

// Decode decodes standard base64. Surrounding whitespace is ignored.
// The result holds the raw decoded bytes, which need not be UTF-8; see IsText.
func Decode(encoded string) (string, error) {
	raw, err := strictEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBase64, err)
	}
	return string(raw), nil
}

// IsText reports whether decoded data is printable as UTF-8 text.
func IsText(decoded string) bool {
	return utf8.ValidString(decoded)
}
