// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Loop constants
const (
	// KeyPollDelayMs is how long each frame iteration waits for a key press.
	// It bounds the quit latency to one frame plus this delay.
	KeyPollDelayMs = 1
)

// Enrollment constants
const (
	// MinID and MaxSuggestedID are the range suggested to first-time users.
	// IDs above MaxSuggestedID are accepted.
	MinID          = 1
	MaxSuggestedID = 10000
)

// Training constants
const (
	// DefaultDedupeDistance is the Hamming distance (out of 64 bits) under
	// which two samples of one identity count as the same shot.
	DefaultDedupeDistance = 4
)
