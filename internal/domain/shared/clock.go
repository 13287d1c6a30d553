package shared

import "time"

// Clock supplies the current time. Identifiers derived from timestamps go through it
// so that tests can pin them.
type Clock func() time.Time

// SystemClock returns time.Now
func SystemClock() time.Time {
	return time.Now()
}
