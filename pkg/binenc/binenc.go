// Package binenc normalizes values crossing the API boundary to a single
// binary representation and renders byte buffers as text.
//
// Strings are treated as UTF-8 and converted to byte buffers; byte slices
// pass through as owned copies. Output rendering supports standard base64,
// URL-safe base64 without padding, hex, and raw UTF-8.
package binenc

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"unicode/utf8"
)

// Encoding selects a text rendering for byte buffers.
type Encoding string

const (
	// Base64 is standard base64 with padding (RFC 4648 §4).
	Base64 Encoding = "base64"
	// Base64URL is URL-safe base64 without padding (RFC 4648 §5).
	Base64URL Encoding = "base64url"
	// Hex is lowercase hexadecimal.
	Hex Encoding = "hex"
	// UTF8 renders the bytes directly as a UTF-8 string.
	UTF8 Encoding = "utf-8"
)

// Bytes converts a string or byte slice to an owned byte buffer.
// Strings are UTF-8 encoded; byte slices are copied so the caller
// cannot mutate data after it has entered the core.
func Bytes(input any) ([]byte, error) {
	switch v := input.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(v), nil
	case []byte:
		out := make([]byte, len(v))
		copy(out, v)

		return out, nil
	default:
		return nil, fmt.Errorf("unsupported input type %T: want string or []byte", input)
	}
}

// Text renders data using the requested encoding.
func Text(data []byte, encoding Encoding) (string, error) {
	switch encoding {
	case Base64:
		return base64.StdEncoding.EncodeToString(data), nil
	case Base64URL:
		return base64.RawURLEncoding.EncodeToString(data), nil
	case Hex:
		return hex.EncodeToString(data), nil
	case UTF8:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("data is not valid UTF-8")
		}

		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported encoding %q", encoding)
	}
}

// Decode parses text in the given encoding back to bytes.
func Decode(text string, encoding Encoding) ([]byte, error) {
	switch encoding {
	case Base64:
		return base64.StdEncoding.DecodeString(text)
	case Base64URL:
		return base64.RawURLEncoding.DecodeString(text)
	case Hex:
		return hex.DecodeString(text)
	case UTF8:
		return []byte(text), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}

// ToBase64 encodes bytes to standard base64 with padding.
func ToBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// FromBase64 decodes standard base64 (with padding) to bytes.
func FromBase64(text string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(text)
}

// ToBase64URL encodes bytes to URL-safe base64 without padding.
func ToBase64URL(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// FromBase64URL decodes URL-safe base64 without padding to bytes.
func FromBase64URL(text string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(text)
}
