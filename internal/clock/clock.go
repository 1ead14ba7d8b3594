// Package clock provides the time sources a card reads when it closes a journey.
package clock

import "time"

// Clock returns the current date-time. Implementations must have no side effects.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock. Location decides which calendar day and
// ISO week a journey falls in; nil means UTC.
type System struct {
	Location *time.Location
}

// Now returns the current time in c.Location.
func (c System) Now() time.Time {
	if c.Location == nil {
		return time.Now().UTC()
	}
	return time.Now().In(c.Location)
}

// Fixed always returns the same instant. Used in tests and replays.
type Fixed time.Time

// Now returns the fixed instant.
func (c Fixed) Now() time.Time { return time.Time(c) }

// Func adapts an ordinary function to the Clock interface.
type Func func() time.Time

// Now calls f.
func (f Func) Now() time.Time { return f() }
