// Package expiry holds the TTL policy for stored files: relative lifetimes
// are validated against fixed bounds and converted to absolute timestamps.
package expiry

import (
	"errors"
	"fmt"
	"time"
)

const (
	// MinMinutes is the shortest accepted TTL.
	MinMinutes = 1
	// MaxMinutes is the longest accepted TTL (30 days).
	MaxMinutes = 43200
)

// ErrOutOfRange reports a TTL outside [MinMinutes, MaxMinutes]. Out-of-range
// values are a hard error, never clamped.
var ErrOutOfRange = errors.New("expiry: ttl out of range")

// Check validates a relative TTL in minutes against the fixed bounds.
func Check(minutes int) error {
	if minutes < MinMinutes || minutes > MaxMinutes {
		return fmt.Errorf("%w: %d not in [%d, %d] minutes", ErrOutOfRange, minutes, MinMinutes, MaxMinutes)
	}
	return nil
}

// At computes the absolute expiry for a TTL starting at now. Refreshing a
// file's TTL calls this with the current time, restarting the clock rather
// than extending the original deadline.
func At(now time.Time, minutes int) time.Time {
	return now.Add(time.Duration(minutes) * time.Minute)
}
