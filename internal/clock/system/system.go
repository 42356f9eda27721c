// Package system provides the wall-clock implementation of vmgd.Clock.
package system

import "time"

// Clock reads the system time in UTC.
type Clock struct{}

// New returns a system clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current time in UTC.
func (c *Clock) Now() time.Time {
	return time.Now().UTC()
}
