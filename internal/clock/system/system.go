// Package system provides the wall-clock implementation of scraper.Clock.
package system

import "time"

// Clock reports the current system time in UTC.
type Clock struct{}

// Now returns the current time.
func (Clock) Now() time.Time {
	return time.Now().UTC()
}
