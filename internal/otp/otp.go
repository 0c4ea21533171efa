// Package otp issues and verifies the short printable codes that gate
// single confirmation steps: transfers, self-service profile edits, and
// admin-proposed profile updates. Codes are alphanumeric, single-shot, and
// deliberately not cryptographic; they are shown to the operator and
// checked by exact match.
package otp

import (
	"crypto/subtle"
	"math/rand/v2"
)

const charset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// Service issues one-time codes of a fixed length.
type Service struct {
	length int
}

// NewService creates a code service issuing codes of the given length.
// Lengths below 1 fall back to 6 characters.
func NewService(length int) *Service {
	if length < 1 {
		length = 6
	}
	return &Service{length: length}
}

// Issue returns a fresh alphanumeric code.
func (s *Service) Issue() string {
	buf := make([]byte, s.length)
	for i := range buf {
		buf[i] = charset[rand.IntN(len(charset))]
	}
	return string(buf)
}

// Verify reports whether the supplied string matches the issued code.
func (s *Service) Verify(issued, supplied string) bool {
	if len(issued) != len(supplied) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(issued), []byte(supplied)) == 1
}
