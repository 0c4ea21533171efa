// Package service implements the operations the console exposes: transfers,
// top-up submission and approval, pending profile updates, and account
// management. Every operation validates before it mutates and persists
// promptly after it mutates.
package service

import "errors"

// Common errors
var (
	ErrCodeMismatch       = errors.New("one-time code mismatch")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrCentralTarget      = errors.New("central wallet cannot be the top-up target")
)
