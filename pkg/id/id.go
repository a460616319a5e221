package id

import (
	"crypto/rand"
	"encoding/base64"
)

// Length is the canonical length of business and feedback identifiers.
const Length = 22

// New returns a random URL-safe identifier of exactly Length characters.
func New() string {
	buf := make([]byte, 17)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)[:Length]
}

// Valid reports whether s has the shape of an identifier produced by New.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}
